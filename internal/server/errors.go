// Package server provides the HTTP API of the bookmark organizer.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/bookmark-organizer/internal/bookmarks"
	"github.com/jonathan/bookmark-organizer/internal/classify"
)

// InputError indicates a request the pipeline cannot start on (no file, bad body).
type InputError struct {
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		inputErr     *InputError
		decodeErr    *bookmarks.DecodeError
		externalErr  *classify.ExternalServiceError
		malformedErr *classify.MalformedResponseError
		maxBytesErr  *http.MaxBytesError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &inputErr), errors.As(err, &decodeErr):
		return http.StatusBadRequest
	case errors.As(err, &externalErr), errors.As(err, &malformedErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
