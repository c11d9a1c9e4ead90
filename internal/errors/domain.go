package errors

import "fmt"

// Kind classifies a DomainError raised below the transport layer.
type Kind string

const (
	KindNoData    Kind = "no_data"
	KindMalformed Kind = "malformed"
	KindExport    Kind = "export"
	KindNotFound  Kind = "not_found"
)

// DomainError is returned by services. The HTTP layer maps Kind onto a
// status code; the CLI prints Error().
type DomainError struct {
	Kind  Kind
	Op    string
	Err   error
	Attrs map[string]any
}

func (e *DomainError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// With attaches a detail that is echoed in problem responses.
func (e *DomainError) With(key string, value any) *DomainError {
	if e.Attrs == nil {
		e.Attrs = make(map[string]any)
	}
	e.Attrs[key] = value
	return e
}

// NoData is raised when an operation needs a loaded dataset.
func NoData(err error) *DomainError {
	return &DomainError{Kind: KindNoData, Op: "no data loaded", Err: err}
}

// ExportFailed wraps an encoder error for format.
func ExportFailed(format string, err error) *DomainError {
	return (&DomainError{Kind: KindExport, Op: "export " + format, Err: err}).With("format", format)
}

// Malformed reports input that was found but could not be interpreted.
func Malformed(op string, err error) *DomainError {
	return &DomainError{Kind: KindMalformed, Op: op, Err: err}
}

// NotFound reports a named resource that does not exist.
func NotFound(resource string) *DomainError {
	return &DomainError{Kind: KindNotFound, Op: resource + " not found"}
}
