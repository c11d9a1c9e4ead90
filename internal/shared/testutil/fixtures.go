package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"sprintdash/pkg/contracts/domain"
)

// ReferenceRecords is the long-form table for developers A and B over two sprints:
//
//	Developer  S1  S2
//	A           5   0
//	B           3  10
func ReferenceRecords() []domain.LongRecord {
	return []domain.LongRecord{
		{Developer: "A", Sprint: "S1", StoryPoints: 5},
		{Developer: "B", Sprint: "S1", StoryPoints: 3},
		{Developer: "A", Sprint: "S2", StoryPoints: 0},
		{Developer: "B", Sprint: "S2", StoryPoints: 10},
	}
}

// WriteWorkbook saves rows into dir/name as the first sheet of an xlsx file
// and returns the full path.
func WriteWorkbook(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
