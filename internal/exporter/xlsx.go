package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sprintdash/pkg/contracts/domain"
)

// Sheet names of the exported workbook.
const (
	RecordsSheet = "Records"
	SummarySheet = "Summary"
)

// WriteWorkbook writes the long-form records and the summary table as two
// sheets of one xlsx workbook.
func WriteWorkbook(w io.Writer, records []domain.LongRecord, summary domain.SummaryTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), RecordsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F1"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	recordRows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		recordRows = append(recordRows, []interface{}{r.Developer, r.Sprint, r.StoryPoints})
	}
	if err := writeSheet(f, RecordsSheet, toAny(RecordHeaders), recordRows, header); err != nil {
		return err
	}

	columns := summary.Columns
	if len(columns) == 0 {
		columns = domain.SummaryColumns
	}
	summaryRows := make([][]interface{}, 0, len(summary.Rows))
	for _, r := range summary.Rows {
		summaryRows = append(summaryRows, []interface{}{r.Developer, r.TotalPoints, r.AveragePoints, r.MaxPoints, r.SprintsCount})
	}
	if err := writeSheet(f, SummarySheet, toAny(columns), summaryRows, header); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return fmt.Errorf("%s column width: %w", sheet, err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func toAny(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
