package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use, and every
// vector an instance returns must have the same dimensionality.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// It is used for search queries, where batching has nothing to batch.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple texts in a batch.
	// The returned slice contains one vector per input text, in input order.
	// Returns an error if any embedding in the batch fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
