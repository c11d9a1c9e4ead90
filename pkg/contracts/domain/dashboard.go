package domain

import (
	"encoding/json"
	"fmt"
)

// DeveloperColumn is the identifier column of the wide spreadsheet.
const DeveloperColumn = "Developer"

// LongRecord is one (developer, sprint, points) observation produced by melting
// the wide spreadsheet. Records are never mutated after the dataset is built.
type LongRecord struct {
	Developer   string  `json:"developer" parquet:"developer,snappy"`
	Sprint      string  `json:"sprint" parquet:"sprint,snappy"`
	StoryPoints float64 `json:"story_points" parquet:"story_points"`
}

// DerivedStats holds the four aggregate numbers shown on the stat cards.
type DerivedStats struct {
	TotalPoints      float64 `json:"total_points"`
	AveragePoints    float64 `json:"average_points"`
	MaxPoints        float64 `json:"max_points"`
	ActiveDevelopers int     `json:"active_developers"`
}

// StatCards is the display form of DerivedStats.
type StatCards struct {
	TotalPoints      string `json:"total_points"`
	AveragePoints    string `json:"average_points"`
	MaxPoints        string `json:"max_points"`
	ActiveDevelopers string `json:"active_developers"`
}

// SummaryRow is the per-developer aggregate for the summary table.
type SummaryRow struct {
	Developer     string  `json:"Developer"`
	TotalPoints   float64 `json:"Total Points"`
	AveragePoints float64 `json:"Average Points"`
	MaxPoints     float64 `json:"Max Points"`
	SprintsCount  int     `json:"Sprints Count"`
}

// SummaryTable wraps the ordered rows with presentation hints.
// Message is set only when there is nothing to show.
type SummaryTable struct {
	Columns  []string     `json:"columns"`
	Rows     []SummaryRow `json:"rows"`
	PageSize int          `json:"page_size"`
	Message  string       `json:"message,omitempty"`
}

// SummaryColumns are the table headings in display order.
var SummaryColumns = []string{"Developer", "Total Points", "Average Points", "Max Points", "Sprints Count"}

// Visibility is the trace visibility of every chart series.
type Visibility int

const (
	// VisibilityDefault means no button has been clicked yet.
	VisibilityDefault Visibility = iota
	// VisibilityAllVisible draws every series.
	VisibilityAllVisible
	// VisibilityAllHidden keeps series in the legend but does not draw them.
	VisibilityAllHidden
)

// String returns the enum name.
func (v Visibility) String() string {
	switch v {
	case VisibilityAllVisible:
		return "all_visible"
	case VisibilityAllHidden:
		return "all_hidden"
	default:
		return "default"
	}
}

// Drawn reports whether series with this visibility are rendered.
// The default state starts hidden to keep a dense legend compact.
func (v Visibility) Drawn() bool {
	return v == VisibilityAllVisible
}

// MarshalJSON encodes the charting convention: true or "legendonly".
func (v Visibility) MarshalJSON() ([]byte, error) {
	if v.Drawn() {
		return []byte("true"), nil
	}
	return []byte(`"legendonly"`), nil
}

// UnmarshalJSON accepts true, false, "legendonly" and the enum names.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*v = VisibilityAllVisible
		} else {
			*v = VisibilityAllHidden
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("visibility: %w", err)
	}
	switch s {
	case "legendonly", "all_hidden":
		*v = VisibilityAllHidden
	case "all_visible":
		*v = VisibilityAllVisible
	case "default", "":
		*v = VisibilityDefault
	default:
		return fmt.Errorf("visibility: unknown value %q", s)
	}
	return nil
}

// YRange is the closed y-axis interval [Min, Max].
type YRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ChartSeries is one developer's line.
type ChartSeries struct {
	Name    string     `json:"name"`
	X       []string   `json:"x"`
	Y       []float64  `json:"y"`
	Mode    string     `json:"mode"`
	Visible Visibility `json:"visible"`
}

// Axis describes a chart axis.
type Axis struct {
	Title string  `json:"title"`
	Range *YRange `json:"range,omitempty"`
	DTick float64 `json:"dtick,omitempty"`
}

// ChartSpec is the full line-chart description for the dashboard.
type ChartSpec struct {
	Title       string        `json:"title"`
	Series      []ChartSeries `json:"series"`
	XAxis       Axis          `json:"xaxis"`
	YAxis       Axis          `json:"yaxis"`
	LegendTitle string        `json:"legend_title"`
	HoverMode   string        `json:"hovermode"`
	Annotation  string        `json:"annotation,omitempty"`
	Visibility  Visibility    `json:"visibility"`
}

// FilterState is the set of user selections that drive the derived views.
// It is treated as an immutable value; changes produce a new FilterState.
type FilterState struct {
	SelectedDevelopers []string `json:"selected_developers" validate:"omitempty,dive,required"`
	YRange             YRange   `json:"y_range"`
	ShowClicks         int      `json:"show_clicks" validate:"gte=0"`
	HideClicks         int      `json:"hide_clicks" validate:"gte=0"`
}

// Visibility resolves the click counters into a trace visibility.
func (f FilterState) Visibility() Visibility {
	return ResolveVisibility(f.ShowClicks, f.HideClicks)
}

// ResolveVisibility compares the monotonically increasing click counters.
// More "show all" clicks than "hide all" clicks makes every series visible.
// Any other combination after an interaction hides series in the legend,
// including a tie and the case where only "hide all" was clicked.
func ResolveVisibility(showClicks, hideClicks int) Visibility {
	switch {
	case showClicks <= 0 && hideClicks <= 0:
		return VisibilityDefault
	case showClicks > hideClicks:
		return VisibilityAllVisible
	default:
		return VisibilityAllHidden
	}
}

// Option is a dropdown entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DashboardOptions describes the controls populated from the dataset.
type DashboardOptions struct {
	Developers   []Option       `json:"developers"`
	Sprints      []string       `json:"sprints"`
	YAxisBounds  YRange         `json:"y_axis_bounds"`
	YAxisStep    float64        `json:"y_axis_step"`
	DefaultRange YRange         `json:"default_range"`
	Marks        map[int]string `json:"marks"`
	Source       string         `json:"source,omitempty"`
	DataLoaded   bool           `json:"data_loaded"`
}

// DashboardViews bundles the derived views. Nil members were not recomputed.
type DashboardViews struct {
	Stats   *DerivedStats `json:"stats,omitempty"`
	Cards   *StatCards    `json:"cards,omitempty"`
	Chart   *ChartSpec    `json:"chart,omitempty"`
	Summary *SummaryTable `json:"summary,omitempty"`
}
