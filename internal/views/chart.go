package views

import (
	"sprintdash/internal/config"
	"sprintdash/pkg/contracts/domain"
)

// Chart labels.
const (
	XAxisTitle  = "Sprint Date"
	YAxisTitle  = "Story Points"
	LegendTitle = "Developer"
	HoverMode   = "x unified"
	SeriesMode  = "lines+markers"
)

// Options holds the y-axis control bounds and table paging.
type Options struct {
	Bounds       domain.YRange
	Step         float64
	DefaultRange domain.YRange
	PageSize     int
	MarkInterval int
}

// DefaultOptions mirrors the default dashboard configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Dashboard)
}

// OptionsFromConfig converts dashboard settings.
func OptionsFromConfig(cfg config.DashboardConfig) Options {
	return Options{
		Bounds:       domain.YRange{Min: cfg.YAxisMin, Max: cfg.YAxisMax},
		Step:         cfg.YAxisStep,
		DefaultRange: domain.YRange{Min: cfg.DefaultYMin, Max: cfg.DefaultYMax},
		PageSize:     cfg.PageSize,
		MarkInterval: cfg.MarkInterval,
	}
}

// NormalizeRange orders the range and clamps it into bounds.
func NormalizeRange(r, bounds domain.YRange) domain.YRange {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	clamp := func(v float64) float64 {
		if v < bounds.Min {
			return bounds.Min
		}
		if v > bounds.Max {
			return bounds.Max
		}
		return v
	}
	return domain.YRange{Min: clamp(r.Min), Max: clamp(r.Max)}
}

// ComputeChartSeries builds the line chart with the default axis bounds.
func ComputeChartSeries(records []domain.LongRecord, selected []string, yRange domain.YRange, visibility domain.Visibility) domain.ChartSpec {
	return computeChart(records, selected, yRange, visibility, DefaultOptions())
}

// computeChart emits one series per developer in first-seen order. Each
// series keeps its sprints in record order and carries the same visibility.
func computeChart(records []domain.LongRecord, selected []string, yRange domain.YRange, visibility domain.Visibility, opts Options) domain.ChartSpec {
	r := NormalizeRange(yRange, opts.Bounds)
	spec := domain.ChartSpec{
		Series:      []domain.ChartSeries{},
		XAxis:       domain.Axis{Title: XAxisTitle},
		YAxis:       domain.Axis{Title: YAxisTitle, Range: &r, DTick: opts.Step},
		LegendTitle: LegendTitle,
		HoverMode:   HoverMode,
		Visibility:  visibility,
	}

	if len(records) == 0 {
		spec.Annotation = config.NoDataMessage
		return spec
	}

	index := make(map[string]int)
	for _, rec := range FilterRecords(records, selected) {
		i, ok := index[rec.Developer]
		if !ok {
			i = len(spec.Series)
			index[rec.Developer] = i
			spec.Series = append(spec.Series, domain.ChartSeries{
				Name:    rec.Developer,
				Mode:    SeriesMode,
				Visible: visibility,
			})
		}
		spec.Series[i].X = append(spec.Series[i].X, rec.Sprint)
		spec.Series[i].Y = append(spec.Series[i].Y, rec.StoryPoints)
	}
	return spec
}
