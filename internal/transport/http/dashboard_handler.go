package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "sprintdash/internal/errors"
	"sprintdash/internal/exporter"
	mw "sprintdash/internal/middleware"
	"sprintdash/internal/views"
	api "sprintdash/pkg/contracts/api/v1"
	"sprintdash/pkg/contracts/domain"
)

// Query parameter names shared by the GET endpoints.
const (
	ParamDeveloper  = "developer"
	ParamYMin       = "y_min"
	ParamYMax       = "y_max"
	ParamShowClicks = "show_clicks"
	ParamHideClicks = "hide_clicks"
	ParamWidth      = "width"
	ParamHeight     = "height"
)

// ExportBaseName is the download file name without extension.
const ExportBaseName = "sprint_points"

// DashboardHandler serves the derived views as JSON, the chart as PNG and the
// export downloads.
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *mw.ValidationMiddleware
	query        *mw.QueryParamValidator
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
		validation:   mw.NewValidationMiddleware(logger, errorHandler),
		query:        mw.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(h.validation.ValidateRequest)

		r.Get("/options", h.GetOptions)
		r.Get("/stats", h.GetStats)
		r.Get("/chart", h.GetChart)
		r.Get("/summary", h.GetSummary)
		r.Post("/views", h.PostViews)
	})

	r.Get("/chart.png", h.GetChartImage)

	r.With(mw.AuditLog(h.logger)).Get("/export/{format}", h.Export)

	return r
}

// GetOptions handles GET /api/dashboard/options
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Options(r.Context()),
	})
}

// GetStats handles GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	selected, ok := h.developers(w, r)
	if !ok {
		return
	}

	stats, cards := h.service.Stats(r.Context(), selected)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"stats": stats,
			"cards": cards,
		},
	})
}

// GetChart handles GET /api/dashboard/chart
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	state, ok := h.filterState(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Chart(r.Context(), state),
	})
}

// GetSummary handles GET /api/dashboard/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	selected, ok := h.developers(w, r)
	if !ok {
		return
	}

	table := h.service.Summary(r.Context(), selected)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   table,
		"count":  len(table.Rows),
	})
}

// PostViews handles POST /api/dashboard/views. The body is a complete filter
// state; the response carries the requested views, every view by default.
func (h *DashboardHandler) PostViews(w http.ResponseWriter, r *http.Request) {
	var req api.ViewsRequest
	if err := h.validation.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	which, err := views.ParseViews(req.Views)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.Invalid("views", err.Error()))
		return
	}

	state := domain.FilterState{
		SelectedDevelopers: req.SelectedDevelopers,
		ShowClicks:         req.ShowClicks,
		HideClicks:         req.HideClicks,
	}
	if state.SelectedDevelopers == nil {
		state.SelectedDevelopers = []string{}
	}
	if req.YRange != nil {
		state.YRange = *req.YRange
	} else {
		state.YRange = h.service.DefaultState().YRange
	}

	out, err := h.service.Views(r.Context(), state, which)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute views",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   api.ViewsResponse{State: state, Views: out},
	})
}

// GetChartImage handles GET /api/dashboard/chart.png
func (h *DashboardHandler) GetChartImage(w http.ResponseWriter, r *http.Request) {
	state, ok := h.filterState(w, r)
	if !ok {
		return
	}
	width, ok := h.query.ValidateInt(w, r, ParamWidth, 200, 4096, exporter.DefaultChartWidth)
	if !ok {
		return
	}
	height, ok := h.query.ValidateInt(w, r, ParamHeight, 100, 4096, exporter.DefaultChartHeight)
	if !ok {
		return
	}

	spec := h.service.Chart(r.Context(), state)
	var buf bytes.Buffer
	if err := exporter.RenderChartPNG(&buf, spec, exporter.ChartOptions{Width: width, Height: height}); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.RenderFailed(string(exporter.FormatPNG), err))
		return
	}

	w.Header().Set("Content-Type", exporter.FormatPNG.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

// Export handles GET /api/dashboard/export/{format}. The file is encoded in
// memory first so a failure can still be reported as a problem response.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	req := api.ExportRequest{
		Format:     chi.URLParam(r, "format"),
		Developers: h.query.Developers(r, ParamDeveloper),
	}
	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.UnsupportedFormat(err, exporter.Formats))
		return
	}

	state, ok := h.filterState(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, format, state); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(ExportBaseName)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

// developers reads the repeated developer parameter and validates each name.
func (h *DashboardHandler) developers(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	selected := h.query.Developers(r, ParamDeveloper)
	req := api.ViewsRequest{SelectedDevelopers: selected}
	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	if selected == nil {
		selected = []string{}
	}
	return selected, true
}

// filterState builds a filter state from query parameters. A missing bound
// falls back to the default range.
func (h *DashboardHandler) filterState(w http.ResponseWriter, r *http.Request) (domain.FilterState, bool) {
	state := h.service.DefaultState()

	selected, ok := h.developers(w, r)
	if !ok {
		return state, false
	}
	state.SelectedDevelopers = selected

	yMin, hasMin, ok := h.query.ValidateFloat(w, r, ParamYMin)
	if !ok {
		return state, false
	}
	yMax, hasMax, ok := h.query.ValidateFloat(w, r, ParamYMax)
	if !ok {
		return state, false
	}
	if hasMin {
		state.YRange.Min = yMin
	}
	if hasMax {
		state.YRange.Max = yMax
	}

	if state.ShowClicks, ok = h.query.ValidateInt(w, r, ParamShowClicks, 0, math.MaxInt32, 0); !ok {
		return state, false
	}
	if state.HideClicks, ok = h.query.ValidateInt(w, r, ParamHideClicks, 0, math.MaxInt32, 0); !ok {
		return state, false
	}
	return state, true
}
