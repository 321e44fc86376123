package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a feed subject (user, entity) that does not exist or
	// is not accessible. It is terminal for a Paginator.
	ErrNotFound = errors.New("feed subject not found")

	// ErrFetchInProgress is returned when a Paginator is asked for a page
	// while another request for the same Paginator is outstanding.
	ErrFetchInProgress = errors.New("page fetch already in progress")

	// ErrNothingToExport is returned when an export name cannot be derived
	// because no items were accumulated.
	ErrNothingToExport = errors.New("no items to export")
)

// APIError represents a non-success HTTP response from the API.
type APIError struct {
	StatusCode int
	Body       string
	Message    string
	Code       string // Optional server-provided code.
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	if e.Code != "" {
		return fmt.Sprintf("feed API %d (%s): %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("feed API %d: %s", e.StatusCode, msg)
}

// TransportError wraps every failure produced while talking to the remote
// service: network errors, exhausted retries, open circuit breaker and
// non-success responses (an *APIError is then available through errors.As).
// Paginators never retry or swallow it.
type TransportError struct {
	Method   string
	URL      string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed after %d attempt(s): %v", e.Method, e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError reports the missing subject of a feed.
type NotFoundError struct {
	Subject string
	Reason  string
}

func (e *NotFoundError) Error() string {
	msg := "feed subject not found"
	if e.Subject != "" {
		msg = fmt.Sprintf("feed subject %q not found", e.Subject)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is makes errors.Is(err, ErrNotFound) hold for every *NotFoundError.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ParseError is a per-item failure. It never aborts a page.
type ParseError struct {
	Feed string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: parse item: %v", e.Feed, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// MalformedError reports a response whose shape did not match what an
// extractor expected. The page is treated as empty and pagination stops.
type MalformedError struct {
	Feed   string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: malformed response: %s", e.Feed, e.Reason)
}
