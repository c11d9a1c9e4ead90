package exporter

import (
	"fmt"
	"io"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sprintdash/pkg/contracts/domain"
)

// Default PNG size in pixels.
const (
	DefaultChartWidth  = 1024
	DefaultChartHeight = 512
)

// palette follows the usual web charting colour cycle.
var palette = []string{
	"636efa", "ef553b", "00cc96", "ab63fa", "ffa15a",
	"19d3f3", "ff6692", "b6e880", "ff97ff", "fecb52",
}

// ChartOptions sizes the rendered image.
type ChartOptions struct {
	Width  int
	Height int
}

// RenderChartPNG draws spec as a PNG. Series that are legend-only are kept
// in the legend with a transparent line so the developer list matches the
// interactive chart.
func RenderChartPNG(w io.Writer, spec domain.ChartSpec, opts ChartOptions) error {
	if opts.Width <= 0 {
		opts.Width = DefaultChartWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultChartHeight
	}

	sprints, index := sprintAxis(spec.Series)
	yr := yRange(spec)

	series := make([]chart.Series, 0, len(spec.Series)+1)
	for i, s := range spec.Series {
		xs := make([]float64, len(s.X))
		for j, label := range s.X {
			xs[j] = float64(index[label])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: s.Y,
			Style:   seriesStyle(i, s.Visible.Drawn()),
		})
	}

	if spec.Annotation != "" || len(series) == 0 {
		label := spec.Annotation
		if label == "" {
			label = "No data"
		}
		series = append(series, chart.AnnotationSeries{
			Annotations: []chart.Value2{{
				XValue: float64(max(len(sprints)-1, 1)) / 2,
				YValue: (yr.Min + yr.Max) / 2,
				Label:  label,
			}},
		})
	}

	ch := chart.Chart{
		Title:      spec.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  spec.XAxis.Title,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(max(len(sprints), 1)) - 0.5},
			Ticks: xTicks(sprints),
		},
		YAxis: chart.YAxis{
			Name:  spec.YAxis.Title,
			Range: &chart.ContinuousRange{Min: yr.Min, Max: yr.Max},
			Ticks: yTicks(yr, spec.YAxis.DTick),
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func seriesStyle(i int, drawn bool) chart.Style {
	if !drawn {
		return chart.Style{
			StrokeColor: drawing.ColorTransparent,
			StrokeWidth: 1,
			DotWidth:    0,
		}
	}
	col := drawing.ColorFromHex(palette[i%len(palette)])
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
}

// sprintAxis orders sprint labels by first appearance across series.
func sprintAxis(series []domain.ChartSeries) ([]string, map[string]int) {
	index := make(map[string]int)
	var labels []string
	for _, s := range series {
		for _, x := range s.X {
			if _, ok := index[x]; !ok {
				index[x] = len(labels)
				labels = append(labels, x)
			}
		}
	}
	return labels, index
}

// yRange never returns an empty span: a collapsed range keeps its lower
// bound and widens by one tick step.
func yRange(spec domain.ChartSpec) domain.YRange {
	r := spec.YAxis.Range
	if r == nil {
		return domain.YRange{Min: 0, Max: 1}
	}
	out := *r
	if out.Max < out.Min {
		out.Min, out.Max = out.Max, out.Min
	}
	if out.Max == out.Min {
		step := spec.YAxis.DTick
		if step <= 0 {
			step = defaultRangeStep
		}
		out.Max = out.Min + step
	}
	return out
}

// defaultRangeStep widens a collapsed y range when no tick step is set.
const defaultRangeStep = 5

// xTicks labels each sprint position. go-chart takes the axis range from the
// outermost ticks, so unlabelled ticks pin the half-slot padding on both
// sides; a single sprint would otherwise produce a zero-width axis.
func xTicks(labels []string) []chart.Tick {
	ticks := make([]chart.Tick, 0, len(labels)+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, l := range labels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: l})
	}
	return append(ticks, chart.Tick{Value: float64(max(len(labels), 1)) - 0.5})
}

// yTicks places a tick every step; a missing or too fine step lets go-chart
// choose. Fewer than two ticks would collapse the axis, so those fall back too.
func yTicks(r domain.YRange, step float64) []chart.Tick {
	if step <= 0 || (r.Max-r.Min)/step > 100 {
		return nil
	}
	var ticks []chart.Tick
	for v := r.Min; v <= r.Max+step/1e6; v += step {
		ticks = append(ticks, chart.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	if len(ticks) < 2 {
		return nil
	}
	return ticks
}
