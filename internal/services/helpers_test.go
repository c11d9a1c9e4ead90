package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"sprintdash/internal/config"
	"sprintdash/internal/dataset"
	"sprintdash/internal/shared/testutil"
	"sprintdash/internal/views"
)

var referenceSheet = [][]any{
	{"Developer", "S1", "S2"},
	{"A", 5, 0},
	{"B", 3, 10},
}

// openReference loads the reference workbook through the real loader.
func openReference(t *testing.T) *dataset.Dataset {
	t.Helper()
	dir := t.TempDir()
	path := testutil.WriteWorkbook(t, dir, "points.xlsx", referenceSheet)
	return openWith(t, dir, path)
}

func openWith(t *testing.T, dir, localPath string) *dataset.Dataset {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cfg := config.DataConfig{
		LocalPath:       localPath,
		FileName:        "absent.xlsx",
		EnvVar:          "SPRINTDASH_TEST_UNSET_PATH",
		DeveloperColumn: "Developer",
	}
	ds, err := dataset.Open(context.Background(), cfg, &config.Paths{ExecutableDir: dir, WorkingDir: dir}, logger)
	require.NoError(t, err)
	return ds
}

func newTestService(t *testing.T, ds *dataset.Dataset) *DashboardService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewDashboardService(ds, views.NewEngine(views.DefaultOptions()), nil, logger)
}
