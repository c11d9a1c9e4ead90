package http

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"sprintdash/internal/config"
	"sprintdash/internal/dataset"
	"sprintdash/internal/services"
	"sprintdash/internal/shared/testutil"
	"sprintdash/internal/views"
)

// openDataset loads localPath through the real loader; an empty path yields
// the degraded empty dataset.
func openDataset(t *testing.T, dir, localPath string) *dataset.Dataset {
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

func newReferenceService(t *testing.T, dir, path string) *services.DashboardService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return services.NewDashboardService(openDataset(t, dir, path), views.NewEngine(views.DefaultOptions()), nil, logger)
}
