package views

import "sprintdash/pkg/contracts/domain"

// FilterRecords keeps records whose developer is selected. An empty selection
// keeps everything. The input slice is never modified.
func FilterRecords(records []domain.LongRecord, selected []string) []domain.LongRecord {
	if len(selected) == 0 {
		return records
	}
	set := make(map[string]struct{}, len(selected))
	for _, d := range selected {
		set[d] = struct{}{}
	}
	out := make([]domain.LongRecord, 0, len(records))
	for _, r := range records {
		if _, ok := set[r.Developer]; ok {
			out = append(out, r)
		}
	}
	return out
}
