// Package apperr defines the error kinds shared by the shopik pipelines.
// Components return *Error values and the HTTP layer maps them to status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the category of an error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindIngestion is malformed tabular input or a missing required column.
	KindIngestion
	// KindExternalService is a failed call to a text-completion oracle.
	KindExternalService
	// KindRemoval is a failed background-removal call for one image.
	KindRemoval
	// KindAnalysis is a failed vision-completion call for one image.
	KindAnalysis
	// KindParse is oracle output that is not valid structured data.
	KindParse
	// KindBadRequest is a malformed HTTP request.
	KindBadRequest
	// KindInternal is anything else.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindIngestion:
		return "ingestion"
	case KindExternalService:
		return "external_service"
	case KindRemoval:
		return "removal"
	case KindAnalysis:
		return "analysis"
	case KindParse:
		return "parse"
	case KindBadRequest:
		return "bad_request"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a categorized error.
type Error struct {
	Kind    Kind
	Op      string // operation that failed (optional)
	Message string
	Err     error // underlying error (optional)
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code a handler should answer with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindIngestion, KindBadRequest:
		return http.StatusBadRequest
	case KindParse:
		return http.StatusUnprocessableEntity
	case KindExternalService, KindRemoval, KindAnalysis:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around err.
func Wrap(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

func Ingestion(message string) *Error {
	return New(KindIngestion, message)
}

func ExternalService(op string, err error) *Error {
	return Wrap(KindExternalService, op, "external service call failed", err)
}

func Removal(err error) *Error {
	return Wrap(KindRemoval, "", "Error removing background", err)
}

func Analysis(err error) *Error {
	return Wrap(KindAnalysis, "", "Error analyzing image", err)
}

func Parse(message string, err error) *Error {
	return Wrap(KindParse, "", message, err)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusError is a non-200 answer from an upstream service.
type StatusError struct {
	Code int
	Body string // truncated response body, for logs only
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received non-200 status code: %d - %s", e.Code, e.Body)
}

// Public renders err for API clients: the message of the first *Error in the
// chain plus the upstream status code, if any. Causes and upstream response
// bodies are left out.
func Public(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return "internal error"
	}
	msg := e.Message
	var se *StatusError
	if errors.As(err, &se) {
		msg = fmt.Sprintf("%s: status %d", msg, se.Code)
	}
	return msg
}
