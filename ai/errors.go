package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrNoEmbedding is returned when the service responds without a vector.
	ErrNoEmbedding = errors.New("ai: no embedding returned")

	// ErrBatchSizeMismatch is returned when the service returns a different
	// number of vectors than texts submitted.
	ErrBatchSizeMismatch = errors.New("ai: embedding count does not match input")
)

// StatusError is an embedding service response with a non-success status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ai: service returned %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the status is transient. Rate limiting and
// server-side failures are; client errors are not.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// retryableMarkers are substrings of transient failures from clients that
// only surface string errors.
var retryableMarkers = []string{
	"429",
	"500",
	"502",
	"503",
	"504",
	"rate limit",
	"timeout",
	"connection refused",
	"connection reset",
	"unexpected EOF",
}

// IsRetryable reports whether an embedding failure is transient. Context
// cancellation is never retryable. Typed errors report their own status;
// opaque client errors are matched against known transient markers.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	for _, marker := range retryableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
