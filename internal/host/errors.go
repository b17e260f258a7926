package host

import (
	"errors"
	"fmt"
	"time"

	"github.com/forkmate/forkmate/internal/model"
)

// NotImplementedError is returned by provider capabilities forkmate
// does not support for a host kind yet.
type NotImplementedError struct {
	Kind model.Kind
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("provider not implemented: %s", e.Kind)
}

// APIError is a non-success response from a hosting API.
type APIError struct {
	// Status is the HTTP status code, or 0 when the request itself
	// failed.
	Status int

	// Message is the response body or transport error text.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
}

// RateLimitError reports that the host refused a request because the
// API quota is exhausted.
type RateLimitError struct {
	Host       string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s, retry after %s", e.Host, e.RetryAfter)
}

// NotFoundError reports a repo the host does not have.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("repo not found: %s", e.Name)
}

// IsRateLimited reports whether err is a rate limit rejection.
func IsRateLimited(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// IsNotImplemented reports whether err means the host kind has no
// working provider.
func IsNotImplemented(err error) bool {
	var niErr *NotImplementedError
	return errors.As(err, &niErr)
}

// IsNotFound reports whether err means the host does not have the
// repo.
func IsNotFound(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}
