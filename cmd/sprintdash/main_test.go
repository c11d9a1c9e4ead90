package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sprintdash/internal/shared/testutil"
	"sprintdash/pkg/contracts"
)

var referenceSheet = [][]any{
	{"Developer", "S1", "S2"},
	{"A", 5, 0},
	{"B", 3, 10},
}

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	t.Setenv("SPRINTDASH_DATA_FILE_NAME", "absent.xlsx")
	t.Setenv("SPRINTDASH_DATA_ENV_VAR", "SPRINTDASH_TEST_UNSET_PATH")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func writeReference(t *testing.T) string {
	t.Helper()
	return testutil.WriteWorkbook(t, t.TempDir(), "points.xlsx", referenceSheet)
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Equal(t, contracts.GetVersionString()+"\n", out)

	out, err = runCmd(t, "version", "--full")
	require.NoError(t, err)
	assert.Contains(t, out, contracts.GetVersionString())
}

func TestSummaryCmd(t *testing.T) {
	path := writeReference(t)

	tests := []struct {
		name     string
		args     []string
		want     []string
		wantNone []string
	}{
		{
			name: "all developers",
			args: []string{"summary", "--data", path},
			want: []string{"Total Points 18", "Average Points 4.5", "Max Points 10", "Active Developers 2", "13", "6.5"},
		},
		{
			name:     "one developer",
			args:     []string{"summary", "--data", path, "--developer", "A"},
			want:     []string{"Total Points 5", "Active Developers 1", "2.5"},
			wantNone: []string{"6.5"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, tt.args...)
			require.NoError(t, err)
			normalized := strings.Join(strings.Fields(out), " ")
			for _, w := range tt.want {
				assert.Contains(t, normalized, w)
			}
			for _, w := range tt.wantNone {
				assert.NotContains(t, normalized, w)
			}
		})
	}
}

func TestSummaryCmd_TopPerformerFirst(t *testing.T) {
	out, err := runCmd(t, "summary", "--data", writeReference(t))
	require.NoError(t, err)

	b := strings.Index(out, " B ")
	a := strings.Index(out, " A ")
	require.NotEqual(t, -1, a)
	require.NotEqual(t, -1, b)
	assert.Less(t, b, a)
}

func TestSummaryCmd_NoData(t *testing.T) {
	out, err := runCmd(t, "summary", "--data", filepath.Join(t.TempDir(), "missing.xlsx"))
	require.NoError(t, err)
	assert.Contains(t, out, "No data available.")
	assert.Contains(t, strings.Join(strings.Fields(out), " "), "Total Points 0")
}

func TestExportCmd(t *testing.T) {
	path := writeReference(t)

	t.Run("csv", func(t *testing.T) {
		dir := t.TempDir()
		out, err := runCmd(t, "export", "--data", path, "--dir", dir, "--out", "points", "--developer", "B")
		require.NoError(t, err)

		written := strings.TrimSpace(out)
		assert.Equal(t, filepath.Join(dir, "points.csv"), written)
		data, err := os.ReadFile(written)
		require.NoError(t, err)
		assert.Contains(t, string(data), "B,S1,3")
		assert.NotContains(t, string(data), "A,S1,5")
	})

	t.Run("xlsx with extension replaced", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "report.csv")
		out, err := runCmd(t, "export", "--data", path, "--format", "xlsx", "--out", target)
		require.NoError(t, err)

		written := strings.TrimSpace(out)
		assert.Equal(t, strings.TrimSuffix(target, ".csv")+".xlsx", written)
		f, err := excelize.OpenFile(written)
		require.NoError(t, err)
		defer f.Close()
		assert.NotEmpty(t, f.GetSheetList())
	})

	t.Run("png", func(t *testing.T) {
		dir := t.TempDir()
		out, err := runCmd(t, "export", "--data", path, "--format", "png", "--dir", dir, "--y-max", "20")
		require.NoError(t, err)
		data, err := os.ReadFile(strings.TrimSpace(out))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
	})
}

func TestExportCmd_Errors(t *testing.T) {
	_, err := runCmd(t, "export", "--data", writeReference(t), "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")

	_, err = runCmd(t, "export", "--data", filepath.Join(t.TempDir(), "missing.xlsx"), "--dir", t.TempDir())
	assert.ErrorIs(t, err, errNoData)
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "summary", "export", "version"} {
		assert.True(t, names[want], want)
	}
}
