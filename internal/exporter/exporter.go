package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"sprintdash/pkg/contracts/domain"
)

// Bundle is everything an export may need. Each format reads only its part.
type Bundle struct {
	Records []domain.LongRecord
	Summary domain.SummaryTable
	Chart   domain.ChartSpec
}

// Write encodes b in format f.
func Write(w io.Writer, f Format, b Bundle) error {
	switch f {
	case FormatCSV:
		return WriteRecordsCSV(w, b.Records, CSVOptions{BOMPrefix: true})
	case FormatXLSX:
		return WriteWorkbook(w, b.Records, b.Summary)
	case FormatParquet:
		return WriteParquet(w, b.Records)
	case FormatPNG:
		return RenderChartPNG(w, b.Chart, ChartOptions{})
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// FileExporter writes exports into a directory.
type FileExporter struct {
	dir    string
	logger *slog.Logger
}

// NewFileExporter creates an exporter rooted at dir.
func NewFileExporter(dir string, logger *slog.Logger) *FileExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileExporter{dir: dir, logger: logger.With(slog.String("component", "exporter"))}
}

// Export writes b as dir/<base>.<format> and returns the path. An empty
// base uses "sprint_points". An absolute base is used as-is.
func (e *FileExporter) Export(f Format, base string, b Bundle) (string, error) {
	if base == "" {
		base = "sprint_points"
	}
	path := f.Filename(base)
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.dir, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(file, f, b); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	e.logger.Info("export written",
		slog.String("format", string(f)),
		slog.String("path", path),
		slog.Int("records", len(b.Records)))
	return path, nil
}
