package index

import "context"

// Sink is a vector index that stores one record per chunk, keyed by chunk
// id. Implementations must be safe for concurrent Upsert calls after
// EnsureCollection has returned.
type Sink interface {
	// EnsureCollection creates the backing collection if missing and pins
	// the vector dimensionality for subsequent upserts. It must be called
	// before Upsert; reads may attach to an existing collection without it.
	EnsureCollection(ctx context.Context, dimensions int) error

	// Upsert writes records into the collection. Re-upserting a record id
	// overwrites the previous record.
	Upsert(ctx context.Context, records []IndexRecord) error

	// Count returns the number of records in the collection.
	Count(ctx context.Context) (int, error)

	// Search returns up to limit records nearest to the query vector,
	// most similar first.
	Search(ctx context.Context, vector []float32, limit int) ([]SearchResult, error)

	// Close releases resources held by the sink.
	Close() error
}
