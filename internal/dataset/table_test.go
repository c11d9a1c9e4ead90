package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRows(t *testing.T) {
	tests := []struct {
		name        string
		rows        [][]string
		wantErr     error
		wantColumns []string
		wantRows    []RawRow
		wantCoerced int
		wantUnnamed int
	}{
		{
			name: "well formed",
			rows: [][]string{
				{"Developer", "S1", "S2"},
				{"A", "5", "0"},
				{"B", "3", "10"},
			},
			wantColumns: []string{"S1", "S2"},
			wantRows: []RawRow{
				{Developer: "A", Points: []float64{5, 0}},
				{Developer: "B", Points: []float64{3, 10}},
			},
		},
		{
			name: "missing and malformed cells become zero",
			rows: [][]string{
				{"Developer", "S1", "S2", "S3"},
				{"A", "", "n/a", "1,250"},
				{"B", "2.5"},
			},
			wantColumns: []string{"S1", "S2", "S3"},
			wantRows: []RawRow{
				{Developer: "A", Points: []float64{0, 0, 1250}},
				{Developer: "B", Points: []float64{2.5, 0, 0}},
			},
			wantCoerced: 4,
		},
		{
			name: "developer column need not be first",
			rows: [][]string{
				{"S1", "developer"},
				{"7", " C "},
			},
			wantColumns: []string{"S1"},
			wantRows:    []RawRow{{Developer: "C", Points: []float64{7}}},
		},
		{
			name: "blank rows are dropped",
			rows: [][]string{
				{"Developer", "S1"},
				{"", "  "},
				{"A", "1"},
			},
			wantColumns: []string{"S1"},
			wantRows:    []RawRow{{Developer: "A", Points: []float64{1}}},
		},
		{
			name: "rows without a developer name are skipped",
			rows: [][]string{
				{"Developer", "S1", "S2"},
				{"  ", "4", "6"},
				{"A", "1", "2"},
			},
			wantColumns: []string{"S1", "S2"},
			wantRows:    []RawRow{{Developer: "A", Points: []float64{1, 2}}},
			wantUnnamed: 1,
		},
		{
			name:        "header only",
			rows:        [][]string{{"Developer", "S1"}},
			wantColumns: []string{"S1"},
		},
		{
			name:    "no rows",
			rows:    nil,
			wantErr: ErrNoHeader,
		},
		{
			name:    "no developer column",
			rows:    [][]string{{"Name", "S1"}, {"A", "1"}},
			wantErr: ErrNoDeveloperColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := parseRows(tt.rows, "Developer")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantColumns, table.Columns)
			assert.Equal(t, tt.wantRows, table.Rows)
			assert.Equal(t, tt.wantCoerced, table.CoercedCells)
			assert.Equal(t, tt.wantUnnamed, table.UnnamedRows)
		})
	}
}

func TestCoerceCell(t *testing.T) {
	for in, want := range map[string]float64{
		"3":     3,
		" 4.5 ": 4.5,
		"":      0,
		"NaN":   0,
		"Inf":   0,
		"abc":   0,
		"-2":    -2,
	} {
		got, _ := coerceCell(in)
		assert.Equal(t, want, got, "input %q", in)
	}
}
