// Package shared holds helpers used across the sprintdash packages.
//
// The testutil subpackage provides a buffered slog handler for asserting
// on log output and builders for the reference story-point workbook:
//
//	logger, handler := testutil.NewTestLogger(t)
//	path := testutil.WriteWorkbook(t, t.TempDir(), "points.xlsx", rows)
//
// Nothing here may import a domain package.
package shared
