// Package dataset locates the story-point spreadsheet, parses it into a wide
// table and melts it into long-form records.
//
// Loading tries an ordered list of candidate locations and returns the first
// one that exists and parses. When none does, Open logs the attempted
// locations and hands back an empty Dataset so the dashboard still starts.
package dataset
