package blob

import "context"

// Store provides durable key/value storage shared by all pipeline stages.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// Get retrieves the payload stored at key.
	// Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores the payload at key, replacing any previous value.
	// The write is atomic per key: concurrent readers see either the old
	// payload or the complete new one.
	Put(ctx context.Context, key string, data []byte) error

	// Exists reports whether key holds a payload.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns all keys beginning with prefix, in lexicographic order.
	// A missing prefix yields an empty slice, not an error.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close closes the store and releases resources.
	Close() error
}
