package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("user not authenticated, please login again")
	ErrUnauthorized    = errors.New("unauthorized, please login again")
	ErrForbidden       = errors.New("access forbidden")
	ErrNotFound        = errors.New("medical profile or note not found")
	ErrInvalidInput    = errors.New("invalid note data, please check your input")
	ErrServer          = errors.New("server error, please try again later")
	ErrUnavailable     = errors.New("service unavailable, please try again later")
	ErrRequestFailed   = errors.New("request failed")
	ErrConnection      = errors.New("connection error, please check your internet connection")
	ErrParse           = errors.New("malformed response payload")
)

// StatusError is a non-2xx response. It unwraps to the sentinel for its status code,
// so callers can test errors.Is(err, ErrNotFound).
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	kind := StatusKind(e.Code)
	if kind == ErrRequestFailed {
		return fmt.Sprintf("request failed with code: %d", e.Code)
	}
	return kind.Error()
}

func (e *StatusError) Unwrap() error {
	return StatusKind(e.Code)
}

// StatusKind maps an HTTP status code to its error kind.
func StatusKind(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnprocessableEntity:
		return ErrInvalidInput
	case http.StatusInternalServerError:
		return ErrServer
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return ErrUnavailable
	default:
		return ErrRequestFailed
	}
}

// APIError is a 2xx response whose envelope reported success=false.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func apiError(message, fallback string) *APIError {
	if message == "" {
		message = fallback
	}
	return &APIError{Message: message}
}
