package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 8050, cfg.Server.Port)
				assert.False(t, cfg.Server.Debug)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "sprint_points.xlsx", cfg.Data.FileName)
				assert.Equal(t, "DATA_FILE_PATH", cfg.Data.EnvVar)
				assert.Equal(t, "Developer", cfg.Data.DeveloperColumn)
				assert.Equal(t, 50.0, cfg.Dashboard.YAxisMax)
				assert.Equal(t, 5.0, cfg.Dashboard.YAxisStep)
				assert.Equal(t, 45.0, cfg.Dashboard.DefaultYMax)
				assert.Equal(t, 15, cfg.Dashboard.PageSize)
				assert.Equal(t, []string{"http://127.0.0.1:8050", "http://localhost:8050"}, cfg.Security.AllowedOrigins)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"SPRINTDASH_SERVER_HOST":     "0.0.0.0",
				"SPRINTDASH_SERVER_PORT":     "9000",
				"SPRINTDASH_SERVER_DEBUG":    "true",
				"SPRINTDASH_DATA_LOCAL_PATH": "/srv/points.xlsx",
				"SPRINTDASH_LOGGING_LEVEL":   "debug",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
				assert.True(t, cfg.Server.Debug)
				assert.Equal(t, "/srv/points.xlsx", cfg.Data.LocalPath)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"SPRINTDASH_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "inverted axis bounds",
			env:     map[string]string{"SPRINTDASH_DASHBOARD_Y_AXIS_MIN": "60"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoadWithYAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := `
server:
  port: 8123
data:
  file_name: team.csv
  sheet: Points
dashboard:
  page_size: 25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sprintdash.yaml"), []byte(content), 0o644))

	t.Run("file values apply", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8123, cfg.Server.Port)
		assert.Equal(t, "team.csv", cfg.Data.FileName)
		assert.Equal(t, "Points", cfg.Data.Sheet)
		assert.Equal(t, 25, cfg.Dashboard.PageSize)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv("SPRINTDASH_SERVER_PORT", "8999")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8999, cfg.Server.Port)
	})
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := loadFromFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "zero port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "empty file name", mutate: func(c *Config) { c.Data.FileName = "" }, wantErr: true},
		{name: "zero step", mutate: func(c *Config) { c.Dashboard.YAxisStep = 0 }, wantErr: true},
		{name: "default range outside bounds", mutate: func(c *Config) { c.Dashboard.DefaultYMax = 80 }, wantErr: true},
		{
			name:   "unknown log output falls back to console",
			mutate: func(c *Config) { c.Logging.Output = "syslog" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, []string{"console", "file", "both"}, cfg.Logging.Output)
		})
	}
}

func TestGetConfigFilePath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	assert.Empty(t, getConfigFilePath())

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "sprintdash.yaml"), []byte("{}"), 0o644))
	assert.Equal(t, "configs/sprintdash.yaml", getConfigFilePath())

	t.Setenv("SPRINTDASH_CONFIG", "/etc/sprintdash.yaml")
	assert.Equal(t, "/etc/sprintdash.yaml", getConfigFilePath())
}
