package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"sprintdash/internal/dataset"
	"sprintdash/internal/infrastructure"
	"sprintdash/internal/interaction"
)

// Problem type URIs.
const (
	TypeValidation        = "/errors/validation"
	TypeNotFound          = "/errors/not-found"
	TypeMethodNotAllowed  = "/errors/method-not-allowed"
	TypeRateLimit         = "/errors/rate-limit"
	TypeInternal          = "/errors/internal"
	TypeTimeout           = "/errors/timeout"
	TypePayloadTooLarge   = "/errors/payload-too-large"
	TypeDataNotFound      = "/errors/data/not-found"
	TypeDataCorrupted     = "/errors/data/corrupted"
	TypeExportFailed      = "/errors/export/failed"
	TypeUnsupportedFormat = "/errors/export/unsupported-format"
)

var codeTypes = map[string]string{
	CodeInvalidRequest:    TypeValidation,
	CodeValidationFailed:  TypeValidation,
	CodePayloadTooLarge:   TypePayloadTooLarge,
	CodeUnsupportedFormat: TypeUnsupportedFormat,
	CodeRenderFailed:      TypeExportFailed,
}

type kindMapping struct {
	status int
	typ    string
}

var kindMappings = map[Kind]kindMapping{
	KindNoData:    {http.StatusNotFound, TypeDataNotFound},
	KindMalformed: {http.StatusUnprocessableEntity, TypeDataCorrupted},
	KindExport:    {http.StatusInternalServerError, TypeExportFailed},
	KindNotFound:  {http.StatusNotFound, TypeNotFound},
}

// ErrorHandler renders every failure as an RFC 7807 problem and logs it
// at a level matching its status.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an error handler. includeStack adds stack traces
// to 5xx responses and should only be set in debug mode.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError writes the problem for err. A nil error writes nothing.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	traceID := requestTraceID(r)
	problem := h.ErrorToProblem(err, r).WithExtension("trace_id", traceID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
		if h.includeStack {
			problem.WithExtension("stack", stackTrace())
		}
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("type", problem.Type),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	render.Render(w, r, problem)
}

// ErrorToProblem classifies err. Unrecognised errors become a generic 500
// so internal messages never reach the client.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	path := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", path)
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		fields := make([]FieldError, 0, len(valErrs))
		for _, fe := range valErrs {
			fields = append(fields, FieldError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			})
		}
		return NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed",
			"One or more fields are invalid", path).WithExtension("errors", fields)
	}

	var notFound *dataset.DataNotFoundError
	if errors.As(err, &notFound) {
		return NewProblemDetails(http.StatusNotFound, TypeDataNotFound, "Data Not Found",
			"No data file could be loaded from any configured location", path).
			WithExtension("locations", notFound.Locations())
	}
	if errors.Is(err, dataset.ErrDataNotFound) {
		return NewProblemDetails(http.StatusNotFound, TypeDataNotFound, "Data Not Found", err.Error(), path)
	}

	if errors.Is(err, interaction.ErrUnknownEvent) || errors.Is(err, interaction.ErrMissingRange) {
		return NewProblemDetails(http.StatusBadRequest, TypeValidation, "Invalid Interaction", err.Error(), path)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		typ, ok := codeTypes[apiErr.Code]
		if !ok {
			typ = TypeInternal
		}
		problem := NewProblemDetails(apiErr.Status, typ, http.StatusText(apiErr.Status), apiErr.Message, path).
			WithExtension("code", apiErr.Code)
		if apiErr.Details != nil {
			problem.WithExtension("details", apiErr.Details)
		}
		return problem
	}

	var domErr *DomainError
	if errors.As(err, &domErr) {
		m, ok := kindMappings[domErr.Kind]
		if !ok {
			m = kindMapping{http.StatusInternalServerError, TypeInternal}
		}
		problem := NewProblemDetails(m.status, m.typ, http.StatusText(m.status), domErr.Error(), path).
			WithExtension("kind", string(domErr.Kind))
		if len(domErr.Attrs) > 0 {
			problem.WithExtension("context", domErr.Attrs)
		}
		return problem
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred while processing your request", path)
}

// HandlePanic logs the recovered value with its stack and answers 500.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered any) {
	traceID := requestTraceID(r)

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred", r.URL.Path).WithExtension("trace_id", traceID)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprint(recovered))
		problem.WithExtension("stack", stackTrace())
	}

	render.Render(w, r, problem)
}

// NotFound is the router's 404 handler.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r.URL.Path).
		WithExtension("trace_id", requestTraceID(r)))
}

// MethodNotAllowed is the router's 405 handler.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, NewProblemDetails(http.StatusMethodNotAllowed, TypeMethodNotAllowed, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path).
		WithExtension("trace_id", requestTraceID(r)))
}

// RateLimited answers 429 with a Retry-After hint in seconds.
func (h *ErrorHandler) RateLimited(w http.ResponseWriter, r *http.Request, retryAfter int) {
	w.Header().Set("Retry-After", fmt.Sprint(retryAfter))
	render.Render(w, r, NewProblemDetails(http.StatusTooManyRequests, TypeRateLimit, "Too Many Requests",
		fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds", retryAfter), r.URL.Path).
		WithExtension("trace_id", requestTraceID(r)).
		WithExtension("retry_after", retryAfter))
}

// requestTraceID prefers the application trace ID and falls back to chi's request ID.
func requestTraceID(r *http.Request) string {
	if id := infrastructure.GetTraceID(r.Context()); id != "" {
		return id
	}
	return middleware.GetReqID(r.Context())
}

func stackTrace() string {
	buf := make([]byte, 8<<10)
	return string(buf[:runtime.Stack(buf, false)])
}
