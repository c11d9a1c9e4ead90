package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sprintdash/internal/dataset"
	apierrors "sprintdash/internal/errors"
	"sprintdash/internal/exporter"
	"sprintdash/internal/infrastructure"
	"sprintdash/internal/interaction"
	"sprintdash/internal/views"
	"sprintdash/pkg/contracts/domain"
)

// DashboardService serves derived views of the dataset loaded at startup.
// The dataset is read-only after construction, so the service is safe for
// concurrent use without locking.
type DashboardService struct {
	data       *dataset.Dataset
	engine     *views.Engine
	dispatcher *interaction.Dispatcher
	metrics    *infrastructure.Metrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewDashboardService wires the dataset, engine and metrics together.
// metrics may be nil.
func NewDashboardService(data *dataset.Dataset, engine *views.Engine, metrics *infrastructure.Metrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if data == nil {
		data = dataset.Empty(nil)
	}

	s := &DashboardService{
		data:    data,
		engine:  engine,
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName + ".dashboard"),
		logger:  logger.With(slog.String("component", "dashboard_service")),
	}
	s.dispatcher = interaction.NewDispatcher(engine, data, s.observe)

	status := data.Status()
	s.logger.Info("DashboardService initialized",
		slog.Bool("data_loaded", status.Loaded),
		slog.String("source", status.Source),
		slog.Int("records", status.Records),
		slog.Int("developers", len(data.Developers())))

	if metrics != nil {
		metrics.DatasetRecords.Add(context.Background(), int64(status.Records))
	}
	return s
}

// Dispatcher returns the interaction dispatcher bound to this dataset.
func (s *DashboardService) Dispatcher() *interaction.Dispatcher { return s.dispatcher }

// Engine returns the view engine.
func (s *DashboardService) Engine() *views.Engine { return s.engine }

// Status reports how the dataset was loaded.
func (s *DashboardService) Status() dataset.Status { return s.data.Status() }

// DefaultState is the filter state before any interaction.
func (s *DashboardService) DefaultState() domain.FilterState { return s.engine.DefaultState() }

// Options returns the control options: developer choices, axis bounds and slider marks.
func (s *DashboardService) Options(ctx context.Context) domain.DashboardOptions {
	opts := s.engine.Options()
	status := s.data.Status()

	devs := s.data.Developers()
	choices := make([]domain.Option, len(devs))
	for i, d := range devs {
		choices[i] = domain.Option{Label: d, Value: d}
	}

	return domain.DashboardOptions{
		Developers:   choices,
		Sprints:      s.data.Sprints(),
		YAxisBounds:  opts.Bounds,
		YAxisStep:    opts.Step,
		DefaultRange: opts.DefaultRange,
		Marks:        s.engine.Marks(),
		Source:       status.Source,
		DataLoaded:   status.Loaded,
	}
}

// Stats returns the aggregate statistics and their display strings.
func (s *DashboardService) Stats(ctx context.Context, selected []string) (domain.DerivedStats, domain.StatCards) {
	_, span := s.startSpan(ctx, "dashboard.stats", attribute.Int("selected", len(selected)))
	defer span.End()

	stats := s.engine.Stats(s.data.Records(), selected)
	return stats, views.FormatStats(stats)
}

// Chart returns the line chart for state.
func (s *DashboardService) Chart(ctx context.Context, state domain.FilterState) domain.ChartSpec {
	_, span := s.startSpan(ctx, "dashboard.chart", attribute.Int("selected", len(state.SelectedDevelopers)))
	defer span.End()

	return s.engine.Chart(s.data.Records(), s.normalize(state))
}

// Summary returns the per-developer summary table.
func (s *DashboardService) Summary(ctx context.Context, selected []string) domain.SummaryTable {
	_, span := s.startSpan(ctx, "dashboard.summary", attribute.Int("selected", len(selected)))
	defer span.End()

	return s.engine.Summary(s.data.Records(), selected)
}

// Views computes the requested views concurrently.
func (s *DashboardService) Views(ctx context.Context, state domain.FilterState, which views.View) (domain.DashboardViews, error) {
	ctx, span := s.startSpan(ctx, "dashboard.views", attribute.String("views", which.String()))
	defer span.End()

	start := time.Now()
	out, err := s.engine.Compute(ctx, s.data.Records(), s.normalize(state), which)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.DashboardViews{}, err
	}

	s.metrics.RecordViews(ctx, "request", which.Names(), time.Since(start))
	return out, nil
}

// Export writes the selected developers' data in format f. The chart image
// uses state; the tabular formats use only its developer selection.
func (s *DashboardService) Export(ctx context.Context, w io.Writer, f exporter.Format, state domain.FilterState) (err error) {
	ctx, span := s.startSpan(ctx, "dashboard.export", attribute.String("format", string(f)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.metrics.RecordExport(ctx, string(f), err)
		span.End()
	}()

	if !s.data.Status().Loaded {
		return apierrors.NoData(ErrNoData).With("attempts", s.data.Status().Attempts)
	}

	bundle := s.Bundle(state)
	if err := exporter.Write(w, f, bundle); err != nil {
		return apierrors.ExportFailed(string(f), err)
	}

	s.logger.InfoContext(ctx, "export completed",
		slog.String("format", string(f)),
		slog.Int("records", len(bundle.Records)))
	return nil
}

// Bundle returns the export bundle for state without encoding it.
func (s *DashboardService) Bundle(state domain.FilterState) exporter.Bundle {
	state = s.normalize(state)
	records := s.data.Records()
	return exporter.Bundle{
		Records: views.FilterRecords(records, state.SelectedDevelopers),
		Summary: s.engine.Summary(records, state.SelectedDevelopers),
		Chart:   s.engine.Chart(records, state),
	}
}

// normalize clamps the range into bounds. The range is taken as given:
// callers start from DefaultState when the client sent none, so 0..0 is a
// legitimate choice rather than "unset".
func (s *DashboardService) normalize(state domain.FilterState) domain.FilterState {
	state.YRange = views.NormalizeRange(state.YRange, s.engine.Options().Bounds)
	return state
}

func (s *DashboardService) observe(ctx context.Context, event interaction.EventType, changed views.View, elapsed time.Duration) {
	s.metrics.RecordInteraction(ctx, string(event))
	s.metrics.RecordViews(ctx, string(event), changed.Names(), elapsed)
	s.logger.DebugContext(ctx, "interaction dispatched",
		slog.String("event", string(event)),
		slog.String("changed", changed.String()),
		slog.Duration("elapsed", elapsed))
}

func (s *DashboardService) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
