package http

import (
	"context"
	"io"

	"sprintdash/internal/exporter"
	"sprintdash/internal/views"
	"sprintdash/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations served over HTTP
type DashboardServiceInterface interface {
	DefaultState() domain.FilterState
	Options(ctx context.Context) domain.DashboardOptions
	Stats(ctx context.Context, selected []string) (domain.DerivedStats, domain.StatCards)
	Chart(ctx context.Context, state domain.FilterState) domain.ChartSpec
	Summary(ctx context.Context, selected []string) domain.SummaryTable
	Views(ctx context.Context, state domain.FilterState, which views.View) (domain.DashboardViews, error)
	Export(ctx context.Context, w io.Writer, f exporter.Format, state domain.FilterState) error
}
