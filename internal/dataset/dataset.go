package dataset

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sprintdash/internal/config"
	"sprintdash/pkg/contracts/domain"
)

// Status reports how the dataset was obtained.
type Status struct {
	Loaded   bool      `json:"loaded"`
	Source   string    `json:"source,omitempty"`
	Label    string    `json:"label,omitempty"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`
	Attempts []Attempt `json:"attempts,omitempty"`
}

// Dataset is the read-only context built once at startup and shared by every
// request. Nothing mutates it after construction, so callers must not modify
// the slices it returns.
type Dataset struct {
	records    []domain.LongRecord
	developers []string
	sprints    []string
	status     Status
}

// New builds a Dataset from a parsed table.
func New(raw *RawTable, loc Location) *Dataset {
	m := Melt(raw)
	return &Dataset{
		records:    m.Records,
		developers: m.Developers,
		sprints:    m.Sprints,
		status: Status{
			Loaded:   true,
			Source:   loc.Path,
			Label:    loc.Label,
			Records:  len(m.Records),
			LoadedAt: time.Now().UTC(),
		},
	}
}

// Empty builds the degraded dataset used when no spreadsheet was found.
func Empty(notFound *DataNotFoundError) *Dataset {
	m := Melt(nil)
	ds := &Dataset{
		records:    m.Records,
		developers: m.Developers,
		sprints:    m.Sprints,
		status:     Status{LoadedAt: time.Now().UTC()},
	}
	if notFound != nil {
		ds.status.Attempts = notFound.Attempts
	}
	return ds
}

// Records returns the long-form records in melt order.
func (d *Dataset) Records() []domain.LongRecord { return d.records }

// Developers returns the sorted distinct developer names.
func (d *Dataset) Developers() []string { return d.developers }

// Sprints returns the sorted distinct sprint labels.
func (d *Dataset) Sprints() []string { return d.sprints }

// Status returns how the dataset was loaded.
func (d *Dataset) Status() Status { return d.status }

// Open resolves the configured locations and builds the dataset. A missing
// spreadsheet is not an error: it is logged with every attempted location and
// an empty dataset is returned. Only context cancellation is reported.
func Open(ctx context.Context, cfg config.DataConfig, paths *config.Paths, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}
	loader := NewLoader(cfg, logger)

	var extra []Source
	if cfg.SheetsID != "" {
		extra = append(extra, &SheetsSource{
			SpreadsheetID:   cfg.SheetsID,
			Range:           cfg.SheetsRange,
			CredentialsFile: cfg.CredentialsFile,
		})
	}

	raw, loc, err := loader.Load(ctx, BuildCandidates(cfg, paths), extra...)
	if err != nil {
		var notFound *DataNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		attrs := make([]any, 0, len(notFound.Attempts))
		for _, a := range notFound.Attempts {
			attrs = append(attrs, slog.String(a.Label, a.Location+" ("+a.Reason+")"))
		}
		logger.WarnContext(ctx, "Data file not found, serving empty dashboard",
			slog.Group("attempted", attrs...))
		return Empty(notFound), nil
	}

	ds := New(raw, loc)
	if dups := duplicateDevelopers(raw); len(dups) > 0 {
		logger.WarnContext(ctx, "Developer names are not unique", slog.Any("developers", dups))
	}
	logger.InfoContext(ctx, "Dataset loaded",
		slog.String("source", loc.Path),
		slog.String("label", loc.Label),
		slog.Int("developers", len(ds.developers)),
		slog.Int("sprints", len(raw.Columns)),
		slog.Int("records", len(ds.records)))
	return ds, nil
}

func duplicateDevelopers(raw *RawTable) []string {
	seen := make(map[string]int, len(raw.Rows))
	var dups []string
	for _, r := range raw.Rows {
		seen[r.Developer]++
		if seen[r.Developer] == 2 {
			dups = append(dups, r.Developer)
		}
	}
	return dups
}
