package client

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBaseURL is returned when the service root is not an absolute URL.
	ErrInvalidBaseURL = errors.New("client: invalid base URL")
	// ErrSearch is returned when the search request fails or its body cannot be decoded.
	ErrSearch = errors.New("client: search request failed")
	// ErrRemoteDispatch is returned when the output request does not succeed.
	ErrRemoteDispatch = errors.New("client: output request failed")
	// ErrTimeout marks a request that exceeded its deadline.
	ErrTimeout = errors.New("client: request timed out")
)

// APIError records a non-success HTTP response from the search service.
type APIError struct {
	Status int
	URL    string
	Body   string
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Body == "" {
		return fmt.Sprintf("client: status %d from %s", e.Status, e.URL)
	}
	return fmt.Sprintf("client: status %d from %s: %s", e.Status, e.URL, e.Body)
}
