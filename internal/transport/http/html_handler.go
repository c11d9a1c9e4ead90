package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"sprintdash/internal/config"
	"sprintdash/pkg/contracts"
)

//go:embed web/index.html
var webFS embed.FS

var indexTemplate = template.Must(template.ParseFS(webFS, "web/index.html"))

// pageData fills the dashboard page template.
type pageData struct {
	Title      string
	Version    string
	APIVersion string
}

// ServeDashboard serves the dashboard page. The page renders nothing by
// itself; it fetches options over HTTP and drives the views over /ws.
func ServeDashboard(logger *slog.Logger) http.HandlerFunc {
	data := pageData{
		Title:      config.AppName,
		Version:    contracts.GetVersionString(),
		APIVersion: contracts.APIVersion,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := indexTemplate.Execute(&buf, data); err != nil {
			logger.ErrorContext(r.Context(), "failed to render dashboard page",
				slog.String("error", err.Error()))
			http.Error(w, "Error rendering page", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(buf.Bytes())
	}
}
