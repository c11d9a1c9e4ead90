package dataset

import (
	"sort"

	"sprintdash/pkg/contracts/domain"
)

// Melted is the long-form view of a RawTable.
type Melted struct {
	Records    []domain.LongRecord
	Developers []string
	Sprints    []string
}

// Melt turns every (row, sprint column) pair into exactly one LongRecord.
// Records are emitted column by column: every developer for the first sprint,
// then every developer for the next. Developers and Sprints are the sorted
// distinct values. An empty table yields empty, non-nil outputs.
func Melt(raw *RawTable) Melted {
	out := Melted{
		Records:    []domain.LongRecord{},
		Developers: []string{},
		Sprints:    []string{},
	}
	if raw == nil {
		return out
	}

	out.Records = make([]domain.LongRecord, 0, len(raw.Rows)*len(raw.Columns))
	for j, sprint := range raw.Columns {
		for _, row := range raw.Rows {
			out.Records = append(out.Records, domain.LongRecord{
				Developer:   row.Developer,
				Sprint:      sprint,
				StoryPoints: row.Points[j],
			})
		}
	}

	devs := make([]string, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		devs = append(devs, row.Developer)
	}
	out.Developers = sortedUnique(devs)
	out.Sprints = sortedUnique(raw.Columns)
	return out
}

func sortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
