package hbnb

import (
	"errors"
	"fmt"
)

var (
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrMalformedPlace  = errors.New("malformed place")
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("hbnb api %s %s: status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("hbnb api %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// TransportError wraps failures that happened before a response arrived.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("hbnb api %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNetworkFailure reports whether err came from the transport or a non-2xx response.
func IsNetworkFailure(err error) bool {
	var apiErr *APIError
	var trErr *TransportError
	return errors.As(err, &apiErr) || errors.As(err, &trErr)
}
