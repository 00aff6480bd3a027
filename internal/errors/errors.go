package errors

import "fmt"

// ErrorCode represents a Hindsight error code.
type ErrorCode string

const (
	ErrPermissionDenied ErrorCode = "PERMISSION_DENIED" // capture not authorized
	ErrStreamSetup      ErrorCode = "STREAM_SETUP"      // stream failed to open
	ErrStreamFaulted    ErrorCode = "STREAM_FAULTED"    // stream died while running
	ErrExtraction       ErrorCode = "EXTRACTION_FAILED" // OCR failure (degrades to no text)
	ErrImageEncode      ErrorCode = "IMAGE_ENCODE"      // screenshot blob not written
	ErrPersistence      ErrorCode = "PERSISTENCE"       // event record not written
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrInternal         ErrorCode = "INTERNAL"
)

// Error is a structured error with a stable code for callers to branch on.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewPermissionDenied creates an error for an unauthorized capture attempt.
func NewPermissionDenied() *Error {
	return &Error{
		Code:    ErrPermissionDenied,
		Message: "screen capture is not authorized",
	}
}

// NewStreamSetup creates an error for a capture stream that failed to open.
func NewStreamSetup(err error) *Error {
	return &Error{
		Code:    ErrStreamSetup,
		Message: fmt.Sprintf("capture stream setup failed: %v", err),
		Cause:   err,
	}
}

// NewStreamFaulted creates an error for a terminal stream failure while running.
func NewStreamFaulted(err error) *Error {
	return &Error{
		Code:    ErrStreamFaulted,
		Message: fmt.Sprintf("capture stream faulted: %v", err),
		Cause:   err,
	}
}

// NewExtraction creates an error for a failed OCR pass.
func NewExtraction(err error) *Error {
	return &Error{
		Code:    ErrExtraction,
		Message: fmt.Sprintf("text extraction failed: %v", err),
		Cause:   err,
	}
}

// NewImageEncode creates an error for a screenshot that could not be written.
func NewImageEncode(err error) *Error {
	return &Error{
		Code:    ErrImageEncode,
		Message: fmt.Sprintf("screenshot encode failed: %v", err),
		Cause:   err,
	}
}

// NewPersistence creates an error for a failed event write.
func NewPersistence(err error) *Error {
	return &Error{
		Code:    ErrPersistence,
		Message: fmt.Sprintf("event persistence failed: %v", err),
		Cause:   err,
	}
}

// NewInvalidRequest creates an error for invalid caller input.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewNotFound creates an error for a missing event or blob.
func NewNotFound(identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("not found: %s", identifier),
	}
}

// NewInternal creates an error for unexpected internal failures.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Message: msg,
		Cause:   err,
	}
}

// Is checks if an error is a Hindsight Error with the given code.
func Is(err error, code ErrorCode) bool {
	if hErr, ok := err.(*Error); ok {
		return hErr.Code == code
	}
	return false
}
