package dataset

import (
	"os"
	"path/filepath"

	"sprintdash/internal/config"
)

// Candidate is one location the loader may read the spreadsheet from.
// An empty Path means the location was not configured.
type Candidate struct {
	Label string
	Path  string
	// Unset is displayed instead of Path when the location is not configured.
	Unset string
}

// Display returns the path or the placeholder for an unset location.
func (c Candidate) Display() string {
	if c.Path == "" {
		return c.Unset
	}
	return c.Path
}

// Candidate labels, in resolution order.
const (
	LabelLocal      = "local"
	LabelExecutable = "executable_dir"
	LabelEnv        = "env"
	LabelWorkingDir = "working_dir"
)

// BuildCandidates returns the four locations in resolution order: the explicit
// local path, next to the executable, the environment variable, and the
// current working directory.
func BuildCandidates(cfg config.DataConfig, paths *config.Paths) []Candidate {
	var exeDir, wd string
	if paths != nil {
		exeDir, wd = paths.ExecutableDir, paths.WorkingDir
	}
	envValue := ""
	if cfg.EnvVar != "" {
		envValue = os.Getenv(cfg.EnvVar)
	}
	return candidatesFrom(cfg.LocalPath, exeDir, cfg.EnvVar, envValue, wd, cfg.FileName)
}

func candidatesFrom(localPath, exeDir, envName, envValue, workingDir, fileName string) []Candidate {
	join := func(dir string) string {
		if dir == "" {
			return ""
		}
		return filepath.Join(dir, fileName)
	}

	envLabel := LabelEnv
	if envName != "" {
		envLabel = LabelEnv + ":" + envName
	}

	cwd := fileName
	if workingDir != "" {
		cwd = filepath.Join(workingDir, fileName)
	}

	return []Candidate{
		{Label: LabelLocal, Path: localPath, Unset: "N/A (not configured)"},
		{Label: LabelExecutable, Path: join(exeDir), Unset: "N/A (executable dir unknown)"},
		{Label: envLabel, Path: envValue, Unset: config.UnsetLocation},
		{Label: LabelWorkingDir, Path: cwd},
	}
}
