package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"sprintdash/internal/services"
)

// MetricsHandler serves runtime statistics as JSON. Prometheus metrics are
// exposed separately at /metrics.
type MetricsHandler struct {
	service *services.HealthService
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(service *services.HealthService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetSystemStats)
	return r
}

// GetSystemStats handles GET /api/metrics
func (h *MetricsHandler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.SystemStats(r.Context()),
	})
}
