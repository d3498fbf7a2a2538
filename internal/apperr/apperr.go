package apperr

import "fmt"

// Error codes
const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeCorruptState    = "CORRUPT_STATE"
	CodeInternal        = "INTERNAL_ERROR"
	CodeBadRequest      = "BAD_REQUEST"
)

// Error is an application error with an HTTP status code and a stable code
// string for API consumers.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error // wrapped underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource.
func NotFound(resource string, id any) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// InvalidArgument reports a caller-supplied value that failed validation.
func InvalidArgument(field string, reason string) *Error {
	return &Error{
		Code:    CodeInvalidArgument,
		Message: fmt.Sprintf("invalid %s: %s", field, reason),
		Status:  400,
	}
}

// CorruptState reports unreadable persisted state. Components recover from
// this locally; it is logged rather than surfaced to callers.
func CorruptState(what string, err error) *Error {
	return &Error{
		Code:    CodeCorruptState,
		Message: fmt.Sprintf("corrupt %s", what),
		Status:  500,
		Err:     err,
	}
}

// Internal wraps an unexpected error.
func Internal(err error) *Error {
	return &Error{
		Code:    CodeInternal,
		Message: "internal error",
		Status:  500,
		Err:     err,
	}
}

// BadRequest reports a malformed request.
func BadRequest(message string) *Error {
	return &Error{
		Code:    CodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code string) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}
