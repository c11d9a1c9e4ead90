package errors

import (
	"fmt"
	"net/http"
)

// APIError is a request-level failure whose status and code are decided by
// the handler that raised it.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// FieldError names one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the details payload of a multi-field validation failure.
type FieldErrors struct {
	Errors []FieldError `json:"errors"`
}

// Error codes carried in APIError.Code.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeRenderFailed      = "RENDER_FAILED"
)

// Invalid rejects a single field.
func Invalid(field, message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeValidationFailed,
		Message: "Request validation failed",
		Details: FieldError{Field: field, Message: message},
	}
}

// InvalidFields rejects several fields at once.
func InvalidFields(fields []FieldError) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeValidationFailed,
		Message: "Request validation failed",
		Details: FieldErrors{Errors: fields},
	}
}

// BadPayload wraps a body that could not be read or decoded.
func BadPayload(err error) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeInvalidRequest,
		Message: "Invalid request format",
		Details: err.Error(),
	}
}

// TooLarge rejects a body over the limit.
func TooLarge(limit, size int64) *APIError {
	return &APIError{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    CodePayloadTooLarge,
		Message: "Request body exceeds maximum allowed size",
		Details: map[string]int64{"max_size": limit, "size": size},
	}
}

// UnsupportedFormat lists the formats that would have been accepted.
func UnsupportedFormat(err error, supported any) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeUnsupportedFormat,
		Message: err.Error(),
		Details: supported,
	}
}

// RenderFailed reports an encoder failure while building a response body.
func RenderFailed(format string, err error) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Code:    CodeRenderFailed,
		Message: fmt.Sprintf("Rendering %s failed", format),
		Details: err.Error(),
	}
}
