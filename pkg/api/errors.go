package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is returned when the access token expired and could not
// be refreshed. Callers should send the user back to login.
var ErrUnauthorized = errors.New("authentication expired")

// StatusError is returned for responses with a 4xx or 5xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int

	// Message is the backend's error message when the body carried one.
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// IsStatus reports whether err carries an HTTP error with the given status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// NetworkError is returned when no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Message returns the text to show a user for err: the backend message for
// HTTP errors, the error string otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnauthorized) {
		return "login expired, please sign in again"
	}
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}
