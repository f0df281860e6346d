package errors

import (
	"errors"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// Resolver error taxonomy. Every one of these is terminal for the request
// that hit it; nothing is retried.
var (
	// ErrNotHandled means the request path does not look like a sized
	// variant at all. Not a failure: the caller falls through to its
	// normal not-found handling.
	ErrNotHandled = errors.New("request not handled")

	// Lookup phase. These keep not-found semantics.
	ErrMissingOriginal   = errors.New("original image file does not exist")
	ErrUnknownAttachment = errors.New("no attachment found for original image")
	ErrUnknownSize       = errors.New("requested dimensions do not match any registered size")

	// Executor phase.
	ErrLoad         = errors.New("cannot load original image")
	ErrResize       = errors.New("resize operation failed")
	ErrSave         = errors.New("cannot save resized image")
	ErrSizeMismatch = errors.New("resized image dimensions do not match requested size")

	// Stream phase.
	ErrStream = errors.New("cannot stream resized image")
)

// StatusCode maps a resolver error to the HTTP status the request should
// terminate with. Lookup failures stay 404; anything past the lookup phase
// is a server error.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrMissingOriginal),
		errors.Is(err, ErrUnknownAttachment),
		errors.Is(err, ErrUnknownSize):
		return http.StatusNotFound
	case errors.Is(err, ErrLoad),
		errors.Is(err, ErrResize),
		errors.Is(err, ErrSave),
		errors.Is(err, ErrSizeMismatch),
		errors.Is(err, ErrStream):
		return http.StatusInternalServerError
	}
	if e, ok := err.(*ErrorWithStatusCode); ok {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}
