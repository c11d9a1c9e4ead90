package views

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"sprintdash/pkg/contracts/domain"
)

// ComputeStats aggregates the selected developers' records. Average and max
// are 0 for an empty set. Active developers counts distinct names with at
// least one sprint above zero points.
func ComputeStats(records []domain.LongRecord, selected []string) domain.DerivedStats {
	filtered := FilterRecords(records, selected)
	if len(filtered) == 0 {
		return domain.DerivedStats{}
	}

	var total float64
	maxPoints := math.Inf(-1)
	active := make(map[string]struct{})
	for _, r := range filtered {
		total += r.StoryPoints
		if r.StoryPoints > maxPoints {
			maxPoints = r.StoryPoints
		}
		if r.StoryPoints > 0 {
			active[r.Developer] = struct{}{}
		}
	}

	return domain.DerivedStats{
		TotalPoints:      total,
		AveragePoints:    total / float64(len(filtered)),
		MaxPoints:        maxPoints,
		ActiveDevelopers: len(active),
	}
}

// FormatStats renders the stat cards: total with thousands separators,
// average with one decimal, max with none.
func FormatStats(s domain.DerivedStats) domain.StatCards {
	return domain.StatCards{
		TotalPoints:      humanize.Comma(int64(math.RoundToEven(s.TotalPoints))),
		AveragePoints:    fmt.Sprintf("%.1f", s.AveragePoints),
		MaxPoints:        fmt.Sprintf("%.0f", s.MaxPoints),
		ActiveDevelopers: strconv.Itoa(s.ActiveDevelopers),
	}
}
