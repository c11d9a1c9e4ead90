package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintdash/internal/config"
	apierrors "sprintdash/internal/errors"
	"sprintdash/internal/exporter"
	"sprintdash/internal/interaction"
	"sprintdash/internal/views"
	"sprintdash/pkg/contracts/domain"
)

func TestDashboardService_Options(t *testing.T) {
	svc := newTestService(t, openReference(t))

	opts := svc.Options(context.Background())
	assert.True(t, opts.DataLoaded)
	assert.Equal(t, []domain.Option{{Label: "A", Value: "A"}, {Label: "B", Value: "B"}}, opts.Developers)
	assert.Equal(t, []string{"S1", "S2"}, opts.Sprints)
	assert.Equal(t, domain.YRange{Min: 0, Max: 50}, opts.YAxisBounds)
	assert.Equal(t, domain.YRange{Min: 0, Max: 45}, opts.DefaultRange)
	assert.Equal(t, 5.0, opts.YAxisStep)
	assert.Equal(t, "50", opts.Marks[50])
	assert.NotEmpty(t, opts.Source)
}

func TestDashboardService_Stats(t *testing.T) {
	svc := newTestService(t, openReference(t))

	tests := []struct {
		name     string
		selected []string
		want     domain.DerivedStats
		cards    domain.StatCards
	}{
		{
			name: "all developers",
			want: domain.DerivedStats{TotalPoints: 18, AveragePoints: 4.5, MaxPoints: 10, ActiveDevelopers: 2},
			cards: domain.StatCards{TotalPoints: "18", AveragePoints: "4.5", MaxPoints: "10", ActiveDevelopers: "2"},
		},
		{
			name:     "single developer",
			selected: []string{"A"},
			want:     domain.DerivedStats{TotalPoints: 5, AveragePoints: 2.5, MaxPoints: 5, ActiveDevelopers: 1},
			cards:    domain.StatCards{TotalPoints: "5", AveragePoints: "2.5", MaxPoints: "5", ActiveDevelopers: "1"},
		},
		{
			name:     "unknown developer",
			selected: []string{"Z"},
			cards:    domain.StatCards{TotalPoints: "0", AveragePoints: "0.0", MaxPoints: "0", ActiveDevelopers: "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, cards := svc.Stats(context.Background(), tt.selected)
			assert.Equal(t, tt.want, stats)
			assert.Equal(t, tt.cards, cards)
		})
	}
}

func TestDashboardService_ChartNormalizesRange(t *testing.T) {
	svc := newTestService(t, openReference(t))

	chart := svc.Chart(context.Background(), svc.DefaultState())
	require.NotNil(t, chart.YAxis.Range)
	assert.Equal(t, domain.YRange{Min: 0, Max: 45}, *chart.YAxis.Range)
	assert.Len(t, chart.Series, 2)
	assert.Empty(t, chart.Annotation)

	chart = svc.Chart(context.Background(), domain.FilterState{YRange: domain.YRange{Min: 60, Max: -5}})
	require.NotNil(t, chart.YAxis.Range)
	assert.Equal(t, domain.YRange{Min: 0, Max: 50}, *chart.YAxis.Range)
}

func TestDashboardService_ExplicitZeroRangeIsKept(t *testing.T) {
	svc := newTestService(t, openReference(t))
	state := svc.DefaultState()
	state.YRange = domain.YRange{}

	chart := svc.Chart(context.Background(), state)
	require.NotNil(t, chart.YAxis.Range)
	assert.Equal(t, domain.YRange{}, *chart.YAxis.Range)

	out, err := svc.Views(context.Background(), state, views.ViewChart)
	require.NoError(t, err)
	require.NotNil(t, out.Chart.YAxis.Range)
	assert.Equal(t, domain.YRange{}, *out.Chart.YAxis.Range)

	bundle := svc.Bundle(state)
	require.NotNil(t, bundle.Chart.YAxis.Range)
	assert.Equal(t, domain.YRange{}, *bundle.Chart.YAxis.Range)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf, exporter.FormatPNG, state))
	assert.NotZero(t, buf.Len())
}

func TestDashboardService_Summary(t *testing.T) {
	svc := newTestService(t, openReference(t))

	table := svc.Summary(context.Background(), nil)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "B", table.Rows[0].Developer)
	assert.Equal(t, 13.0, table.Rows[0].TotalPoints)
	assert.Equal(t, "A", table.Rows[1].Developer)
	assert.Equal(t, 2, table.Rows[1].SprintsCount)
	assert.Empty(t, table.Message)
}

func TestDashboardService_Views(t *testing.T) {
	svc := newTestService(t, openReference(t))

	out, err := svc.Views(context.Background(), svc.DefaultState(), views.ViewChart)
	require.NoError(t, err)
	assert.NotNil(t, out.Chart)
	assert.Nil(t, out.Stats)
	assert.Nil(t, out.Summary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Views(ctx, svc.DefaultState(), views.AllViews)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDashboardService_Dispatcher(t *testing.T) {
	svc := newTestService(t, openReference(t))
	d := svc.Dispatcher()

	session := d.NewSession()
	session, upd, err := d.Dispatch(context.Background(), session, interaction.Event{Type: interaction.EventShowAll})
	require.NoError(t, err)
	assert.Equal(t, []string{"chart"}, upd.Changed)
	require.NotNil(t, upd.Views.Chart)
	assert.Equal(t, domain.VisibilityAllVisible, upd.Views.Chart.Visibility)

	_, upd, err = d.Dispatch(context.Background(), session, interaction.Event{
		Type:       interaction.EventSelectDevelopers,
		Developers: []string{"B"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"stats", "chart", "summary"}, upd.Changed)
	require.NotNil(t, upd.Views.Stats)
	assert.Equal(t, 13.0, upd.Views.Stats.TotalPoints)
}

func TestDashboardService_Export(t *testing.T) {
	svc := newTestService(t, openReference(t))

	var buf bytes.Buffer
	state := domain.FilterState{SelectedDevelopers: []string{"B"}}
	require.NoError(t, svc.Export(context.Background(), &buf, exporter.FormatCSV, state))
	assert.Contains(t, buf.String(), "B,S1,3")
	assert.NotContains(t, buf.String(), "A,S1")

	bundle := svc.Bundle(state)
	assert.Len(t, bundle.Records, 2)
	assert.Len(t, bundle.Summary.Rows, 1)

	err := svc.Export(context.Background(), &buf, exporter.Format("pdf"), state)
	var domErr *apierrors.DomainError
	require.True(t, errors.As(err, &domErr))
	assert.Equal(t, apierrors.KindExport, domErr.Kind)
}

func TestDashboardService_EmptyDataset(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(t, openWith(t, dir, ""))

	status := svc.Status()
	assert.False(t, status.Loaded)
	assert.NotEmpty(t, status.Attempts)

	chart := svc.Chart(context.Background(), svc.DefaultState())
	assert.Equal(t, config.NoDataMessage, chart.Annotation)
	assert.Empty(t, chart.Series)

	table := svc.Summary(context.Background(), nil)
	assert.Equal(t, config.NoTableDataMessage, table.Message)

	err := svc.Export(context.Background(), &bytes.Buffer{}, exporter.FormatCSV, svc.DefaultState())
	var domErr *apierrors.DomainError
	require.True(t, errors.As(err, &domErr))
	assert.Equal(t, apierrors.KindNoData, domErr.Kind)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestNewDashboardService_NilDataset(t *testing.T) {
	svc := NewDashboardService(nil, views.NewEngine(views.DefaultOptions()), nil, nil)
	assert.False(t, svc.Status().Loaded)
	assert.Empty(t, svc.Options(context.Background()).Developers)
}
