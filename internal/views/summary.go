package views

import (
	"math"
	"sort"

	"sprintdash/internal/config"
	"sprintdash/pkg/contracts/domain"
)

// ComputeSummaryTable groups the selected records by developer and returns
// one row each, ordered by total points descending. Ties keep developer name
// order. Values are rounded half to even to one decimal.
func ComputeSummaryTable(records []domain.LongRecord, selected []string) []domain.SummaryRow {
	filtered := FilterRecords(records, selected)
	if len(filtered) == 0 {
		return []domain.SummaryRow{}
	}

	type agg struct {
		sum, max float64
		count    int
	}
	groups := make(map[string]*agg)
	for _, r := range filtered {
		g, ok := groups[r.Developer]
		if !ok {
			g = &agg{max: math.Inf(-1)}
			groups[r.Developer] = g
		}
		g.sum += r.StoryPoints
		g.count++
		if r.StoryPoints > g.max {
			g.max = r.StoryPoints
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]domain.SummaryRow, 0, len(names))
	for _, name := range names {
		g := groups[name]
		rows = append(rows, domain.SummaryRow{
			Developer:     name,
			TotalPoints:   round1(g.sum),
			AveragePoints: round1(g.sum / float64(g.count)),
			MaxPoints:     round1(g.max),
			SprintsCount:  g.count,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalPoints > rows[j].TotalPoints
	})
	return rows
}

// BuildSummaryTable wraps the rows with column headings and paging. An empty
// dataset carries the no-data message instead of rows.
func BuildSummaryTable(records []domain.LongRecord, selected []string, pageSize int) domain.SummaryTable {
	table := domain.SummaryTable{
		Columns:  domain.SummaryColumns,
		Rows:     ComputeSummaryTable(records, selected),
		PageSize: pageSize,
	}
	if len(records) == 0 {
		table.Message = config.NoTableDataMessage
	}
	return table
}

func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
