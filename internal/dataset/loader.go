package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sprintdash/internal/config"
)

// TracerName is the instrumentation scope for dataset spans.
const TracerName = "sprintdash/dataset"

// ErrDataNotFound is matched by errors.Is for every DataNotFoundError.
var ErrDataNotFound = errors.New("data not found")

// Attempt records why a candidate location was not used.
type Attempt struct {
	Label    string `json:"label"`
	Location string `json:"location"`
	Reason   string `json:"reason"`
}

// DataNotFoundError is returned when no candidate produced a table.
type DataNotFoundError struct {
	Attempts []Attempt
}

// Error lists every attempted location.
func (e *DataNotFoundError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s=%s (%s)", a.Label, a.Location, a.Reason))
	}
	return "data file not found; tried: " + strings.Join(parts, ", ")
}

// Unwrap lets errors.Is match ErrDataNotFound.
func (e *DataNotFoundError) Unwrap() error { return ErrDataNotFound }

// Locations returns the attempted locations in order.
func (e *DataNotFoundError) Locations() []string {
	out := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		out[i] = a.Location
	}
	return out
}

// Attempt reasons.
const (
	ReasonNotConfigured = "not configured"
	ReasonNotFound      = "not found"
)

// Loader resolves candidate locations into a RawTable.
type Loader struct {
	developerColumn string
	sheet           string
	logger          *slog.Logger
	// open maps a file path to its Source; replaced in tests.
	open func(path, sheet string) Source
}

// NewLoader creates a loader for the given data settings.
func NewLoader(cfg config.DataConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	col := cfg.DeveloperColumn
	if col == "" {
		col = "Developer"
	}
	return &Loader{
		developerColumn: col,
		sheet:           cfg.Sheet,
		logger:          logger.With(slog.String("component", "dataset_loader")),
		open:            SourceForPath,
	}
}

// Location identifies the candidate that was loaded.
type Location struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Load tries each candidate in order, then each extra source, and returns the
// first table that parses. A candidate that exists but fails to parse is
// skipped and its error recorded. When nothing loads, the error is a
// *DataNotFoundError carrying every attempt.
func (l *Loader) Load(ctx context.Context, candidates []Candidate, extra ...Source) (*RawTable, Location, error) {
	ctx, span := otel.Tracer(TracerName).Start(ctx, "dataset.load")
	defer span.End()

	var attempts []Attempt
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, Location{}, err
		}

		if c.Path == "" {
			attempts = append(attempts, Attempt{Label: c.Label, Location: c.Display(), Reason: ReasonNotConfigured})
			continue
		}
		if !config.FileExists(c.Path) {
			attempts = append(attempts, Attempt{Label: c.Label, Location: c.Path, Reason: ReasonNotFound})
			continue
		}

		table, err := l.read(ctx, l.open(c.Path, l.sheet))
		if err != nil {
			l.logger.WarnContext(ctx, "Candidate exists but could not be parsed",
				slog.String("label", c.Label),
				slog.String("path", c.Path),
				slog.String("error", err.Error()))
			attempts = append(attempts, Attempt{Label: c.Label, Location: c.Path, Reason: err.Error()})
			continue
		}

		span.SetAttributes(attribute.String("dataset.source", c.Path), attribute.String("dataset.label", c.Label))
		return table, Location{Label: c.Label, Path: c.Path}, nil
	}

	for _, src := range extra {
		if src == nil {
			continue
		}
		table, err := l.read(ctx, src)
		if err != nil {
			attempts = append(attempts, Attempt{Label: "remote", Location: src.Location(), Reason: err.Error()})
			continue
		}
		span.SetAttributes(attribute.String("dataset.source", src.Location()))
		return table, Location{Label: "remote", Path: src.Location()}, nil
	}

	err := &DataNotFoundError{Attempts: attempts}
	span.RecordError(err)
	span.SetStatus(codes.Error, "data not found")
	return nil, Location{}, err
}

func (l *Loader) read(ctx context.Context, src Source) (*RawTable, error) {
	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, err
	}
	table, err := parseRows(rows, l.developerColumn)
	if err != nil {
		return nil, err
	}
	if table.CoercedCells > 0 {
		l.logger.DebugContext(ctx, "Substituted zero for missing cells",
			slog.String("source", src.Location()),
			slog.Int("cells", table.CoercedCells))
	}
	if table.UnnamedRows > 0 {
		l.logger.WarnContext(ctx, "Skipped rows without a developer name",
			slog.String("source", src.Location()),
			slog.Int("rows", table.UnnamedRows))
	}
	return table, nil
}
