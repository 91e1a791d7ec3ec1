package datasource

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMalformedResponse is returned when a response body cannot be decoded
	// or lacks a required field.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrCityNotFound is matched by a StatusError carrying a 404.
	ErrCityNotFound = errors.New("city not found")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API returned status %d", e.Status)
	}
	return fmt.Sprintf("API returned status %d: %s", e.Status, e.Body)
}

// Is lets errors.Is(err, ErrCityNotFound) match a 404.
func (e *StatusError) Is(target error) bool {
	return target == ErrCityNotFound && e.Status == http.StatusNotFound
}

func malformed(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedResponse, field)
}
