package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Source yields the cell grid of a spreadsheet, header row first.
type Source interface {
	Rows(ctx context.Context) ([][]string, error)
	Location() string
}

// SourceForPath picks a reader by file extension. Anything that is not a
// CSV file is opened as an Excel workbook.
func SourceForPath(path, sheet string) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return &CSVSource{Path: path}
	default:
		return &ExcelSource{Path: path, Sheet: sheet}
	}
}

// ExcelSource reads one sheet of an .xlsx workbook.
type ExcelSource struct {
	Path string
	// Sheet defaults to the first sheet in the workbook.
	Sheet string
}

// Location returns the workbook path.
func (s *ExcelSource) Location() string { return s.Path }

// Rows returns the header with its display text and the body with raw cell
// values, so number formats never leak into the points.
func (s *ExcelSource) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = list[0]
	}

	display, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(display) == 0 {
		return nil, nil
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(raw) > 0 {
		raw[0] = display[0]
	}
	return raw, nil
}

// CSVSource reads a comma separated file.
type CSVSource struct {
	Path string
}

// Location returns the file path.
func (s *CSVSource) Location() string { return s.Path }

// Rows reads every record. A leading UTF-8 BOM is stripped.
func (s *CSVSource) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// SheetsSource reads a range from a Google Sheets spreadsheet.
type SheetsSource struct {
	SpreadsheetID   string
	Range           string
	CredentialsFile string
	// Options are appended to the client options; tests use them to point
	// the client at a local server.
	Options []option.ClientOption
}

// Location returns a sheets:// style identifier.
func (s *SheetsSource) Location() string {
	return fmt.Sprintf("sheets://%s/%s", s.SpreadsheetID, s.Range)
}

// Rows fetches the range values and renders every cell as text.
func (s *SheetsSource) Rows(ctx context.Context) ([][]string, error) {
	opts := make([]option.ClientOption, 0, len(s.Options)+1)
	if s.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(s.CredentialsFile))
	}
	opts = append(opts, s.Options...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	resp, err := svc.Spreadsheets.Values.Get(s.SpreadsheetID, s.Range).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet range: %w", err)
	}

	rows := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		row := make([]string, len(values))
		for j, v := range values {
			if v != nil {
				row[j] = fmt.Sprint(v)
			}
		}
		rows[i] = row
	}
	return rows, nil
}
