// Package exporter writes dashboard data out of the process.
//
// Every format writes to an io.Writer so the same code serves HTTP
// downloads and the export command:
//
//	csv      long-form records, UTF-8 BOM for Excel
//	xlsx     a workbook with Records and Summary sheets
//	parquet  long-form records, snappy-compressed columns
//	png      the line chart rendered server-side
//
// FileExporter adds directory handling on top for command-line use:
//
//	fe := exporter.NewFileExporter("exports", logger)
//	path, err := fe.Export(exporter.FormatXLSX, bundle)
package exporter
