// Package interaction holds per-viewer filter state and maps each control
// change to the derived views that depend on it.
//
// A Session is an immutable value. Applying an event returns a new Session
// and the set of views to recompute: developer selection affects every view,
// while the y-axis range and the show/hide buttons affect only the chart.
package interaction
