package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"sprintdash/pkg/contracts/domain"
)

// View identifies one derived view.
type View uint8

const (
	ViewStats View = 1 << iota
	ViewChart
	ViewSummary

	// AllViews selects every derived view.
	AllViews = ViewStats | ViewChart | ViewSummary
)

// Has reports whether v includes other.
func (v View) Has(other View) bool { return v&other == other && other != 0 }

// String lists the member views, e.g. "stats,chart".
func (v View) String() string {
	var parts []string
	if v.Has(ViewStats) {
		parts = append(parts, "stats")
	}
	if v.Has(ViewChart) {
		parts = append(parts, "chart")
	}
	if v.Has(ViewSummary) {
		parts = append(parts, "summary")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// Names returns the member view names.
func (v View) Names() []string {
	if v == 0 {
		return nil
	}
	return strings.Split(v.String(), ",")
}

// ParseViews resolves view names. No names selects every view.
func ParseViews(names []string) (View, error) {
	if len(names) == 0 {
		return AllViews, nil
	}
	var v View
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "stats":
			v |= ViewStats
		case "chart":
			v |= ViewChart
		case "summary":
			v |= ViewSummary
		default:
			return 0, fmt.Errorf("unknown view %q", n)
		}
	}
	return v, nil
}

// Engine applies configured axis bounds and paging to the pure view functions.
type Engine struct {
	opts Options
}

// NewEngine creates an engine with the given options.
func NewEngine(opts Options) *Engine {
	if opts.Step <= 0 {
		opts.Step = DefaultOptions().Step
	}
	if opts.Bounds.Min >= opts.Bounds.Max {
		opts.Bounds = DefaultOptions().Bounds
	}
	return &Engine{opts: opts}
}

// Options returns the engine options.
func (e *Engine) Options() Options { return e.opts }

// DefaultState is the filter state before any interaction.
func (e *Engine) DefaultState() domain.FilterState {
	return domain.FilterState{
		SelectedDevelopers: []string{},
		YRange:             e.opts.DefaultRange,
	}
}

// Stats computes the aggregate statistics.
func (e *Engine) Stats(records []domain.LongRecord, selected []string) domain.DerivedStats {
	return ComputeStats(records, selected)
}

// Chart computes the chart for the full filter state.
func (e *Engine) Chart(records []domain.LongRecord, state domain.FilterState) domain.ChartSpec {
	return computeChart(records, state.SelectedDevelopers, state.YRange, state.Visibility(), e.opts)
}

// Summary computes the paged summary table.
func (e *Engine) Summary(records []domain.LongRecord, selected []string) domain.SummaryTable {
	return BuildSummaryTable(records, selected, e.opts.PageSize)
}

// Compute runs the requested views concurrently. Each computation reads the
// shared records and writes only its own result.
func (e *Engine) Compute(ctx context.Context, records []domain.LongRecord, state domain.FilterState, which View) (domain.DashboardViews, error) {
	var out domain.DashboardViews
	g, ctx := errgroup.WithContext(ctx)

	if which.Has(ViewStats) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := e.Stats(records, state.SelectedDevelopers)
			cards := FormatStats(s)
			out.Stats, out.Cards = &s, &cards
			return nil
		})
	}
	if which.Has(ViewChart) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := e.Chart(records, state)
			out.Chart = &c
			return nil
		})
	}
	if which.Has(ViewSummary) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := e.Summary(records, state.SelectedDevelopers)
			out.Summary = &t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.DashboardViews{}, err
	}
	return out, nil
}

// Snapshot computes every view.
func (e *Engine) Snapshot(ctx context.Context, records []domain.LongRecord, state domain.FilterState) (domain.DashboardViews, error) {
	return e.Compute(ctx, records, state, AllViews)
}

// Marks returns the labelled slider ticks.
func (e *Engine) Marks() map[int]string {
	marks := make(map[int]string)
	step := e.opts.MarkInterval
	if step <= 0 {
		step = 10
	}
	for i := int(e.opts.Bounds.Min); float64(i) <= e.opts.Bounds.Max; i += step {
		marks[i] = strconv.Itoa(i)
	}
	return marks
}
