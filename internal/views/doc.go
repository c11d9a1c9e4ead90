// Package views computes the dashboard's derived views from long-form records.
//
// ComputeStats, ComputeChartSeries and ComputeSummaryTable are pure functions
// of (records, filter selections). They never mutate their input and share no
// state, so Snapshot may run them concurrently. Every function returns a
// well-defined zero value for an empty record set.
package views
