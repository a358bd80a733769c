package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind partitions failures into the closed taxonomy the service surfaces.
type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindNotFound
	KindProcedure
	KindDecode
	KindStorage
	KindInternal
)

// InternalMessage is the fixed message returned for unexpected failures.
// Detail is logged, never leaked.
const InternalMessage = "An unexpected error occurred. Please try again later."

// Error is a structured failure: a status-like numeric code, a human
// readable message and a machine code tag, optionally wrapping a cause.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidation(message string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: message}
}

func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Code: "CONFLICT", Message: message}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND", Message: message}
}

// NewProcedure wraps a non-empty error envelope returned by a stored
// procedure. The procedure's own message is surfaced.
func NewProcedure(message string) *Error {
	return &Error{Kind: KindProcedure, Status: http.StatusInternalServerError, Code: "PROCEDURE_ERROR", Message: message}
}

func NewDecode(message string, cause error) *Error {
	return &Error{Kind: KindDecode, Status: http.StatusInternalServerError, Code: "DECODE_ERROR", Message: message, Err: cause}
}

func NewStorage(message string, cause error) *Error {
	return &Error{Kind: KindStorage, Status: http.StatusInternalServerError, Code: "STORAGE_ERROR", Message: message, Err: cause}
}

// NewInternal converts an unexpected failure into the generic internal
// error with the fixed message.
func NewInternal(cause error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Code: "INTERNAL_SERVER_ERROR", Message: InternalMessage, Err: cause}
}

// From extracts the *Error from err's chain, or nil when err carries none.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e := From(err)
	return e != nil && e.Kind == kind
}
