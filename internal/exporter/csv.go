package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"sprintdash/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RecordHeaders is the header row of the long-form CSV.
var RecordHeaders = []string{domain.DeveloperColumn, "Sprint", "Story Points"}

// CSVOptions configures CSV writing behavior
type CSVOptions struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognises the encoding.
	BOMPrefix bool
}

// WriteRecordsCSV writes the long-form table, one row per developer and sprint.
func WriteRecordsCSV(w io.Writer, records []domain.LongRecord, opts CSVOptions) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Developer, r.Sprint, formatPoints(r.StoryPoints)})
	}
	return writeCSV(w, RecordHeaders, rows, opts)
}

// WriteSummaryCSV writes the per-developer summary in its display order.
func WriteSummaryCSV(w io.Writer, table domain.SummaryTable, opts CSVOptions) error {
	headers := table.Columns
	if len(headers) == 0 {
		headers = domain.SummaryColumns
	}

	rows := make([][]string, 0, len(table.Rows))
	for _, r := range table.Rows {
		rows = append(rows, []string{
			r.Developer,
			formatPoints(r.TotalPoints),
			formatFixed(r.AveragePoints),
			formatPoints(r.MaxPoints),
			strconv.Itoa(r.SprintsCount),
		})
	}
	return writeCSV(w, headers, rows, opts)
}

func writeCSV(w io.Writer, headers []string, rows [][]string, opts CSVOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
