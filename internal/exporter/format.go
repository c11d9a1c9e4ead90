package exporter

import (
	"fmt"
	"strconv"
	"strings"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
	FormatPNG     Format = "png"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatXLSX, FormatParquet, FormatPNG}

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// Filename returns the download name for the format.
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// formatPoints writes story points without trailing zeros, so 5 stays "5" and 4.5 stays "4.5".
func formatPoints(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatFixed formats a summary average with one decimal place.
func formatFixed(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
