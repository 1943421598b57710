package index

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrCollectionNotReady is returned when a sink is used before
	// EnsureCollection established the collection.
	ErrCollectionNotReady = errors.New("index: collection not ready")

	// ErrInvalidRecord is returned when an index record is structurally
	// incomplete.
	ErrInvalidRecord = errors.New("index: invalid record")
)

// SinkError is a vector store response with a non-success status.
type SinkError struct {
	StatusCode int
	Message    string
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("index: sink returned %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the status is transient. Rate limiting and
// server-side failures are; client errors are not.
func (e *SinkError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// IsRetryable reports whether a sink failure is transient. Context
// cancellation is never retryable; network errors always are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var sinkErr *SinkError
	if errors.As(err, &sinkErr) {
		return sinkErr.Retryable()
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
