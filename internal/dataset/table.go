package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNoHeader is returned for a sheet with no rows at all.
	ErrNoHeader = errors.New("sheet has no header row")
	// ErrNoDeveloperColumn is returned when the identifier column is absent.
	ErrNoDeveloperColumn = errors.New("developer column not found")
)

// RawTable is the wide spreadsheet: one row per developer, one column per sprint.
type RawTable struct {
	// Columns are the sprint headings in sheet order.
	Columns []string
	Rows    []RawRow
	// CoercedCells counts blank or non-numeric cells that were replaced by 0.
	CoercedCells int
	// UnnamedRows counts rows skipped because the developer cell was blank.
	UnnamedRows int
}

// RawRow is one developer's points, aligned with RawTable.Columns.
type RawRow struct {
	Developer string
	Points    []float64
}

// Empty reports whether the table holds no developer rows.
func (t *RawTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// parseRows converts sheet rows into a RawTable. The first row is the header.
// Rows that are entirely blank are dropped, as are rows without a developer
// name since they could never be selected. Missing and malformed cells become 0.
func parseRows(rows [][]string, developerColumn string) (*RawTable, error) {
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	header := rows[0]
	devIdx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == developerColumn {
			devIdx = i
			break
		}
	}
	if devIdx < 0 {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), developerColumn) {
				devIdx = i
				break
			}
		}
	}
	if devIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoDeveloperColumn, developerColumn)
	}

	table := &RawTable{}
	colIdx := make([]int, 0, len(header))
	for i, h := range header {
		if i == devIdx {
			continue
		}
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}
		table.Columns = append(table.Columns, name)
		colIdx = append(colIdx, i)
	}

	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		name := strings.TrimSpace(cell(row, devIdx))
		if name == "" {
			table.UnnamedRows++
			continue
		}
		r := RawRow{
			Developer: name,
			Points:    make([]float64, len(colIdx)),
		}
		for j, idx := range colIdx {
			v, ok := coerceCell(cell(row, idx))
			if !ok {
				table.CoercedCells++
			}
			r.Points[j] = v
		}
		table.Rows = append(table.Rows, r)
	}

	return table, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// coerceCell parses a numeric cell. ok is false when the cell was blank or
// malformed and 0 was substituted.
func coerceCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
