// Package mock provides a test double implementation of ai.Embedder.
//
// The mock allows tests to run without an external embedding service and
// enables controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default deterministic vectors
//	mockEmbed := mock.NewEmbedder()
//	vectors, err := mockEmbed.EmbedTexts(ctx, []string{"test"})
//
//	// Custom behavior injection
//	mockEmbed.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service unavailable")
//	}
//
//	// Check call counts
//	count := mockEmbed.CallCount()
//
// # Default Behavior
//
// Without injected functions the mock returns unit vectors derived from a
// hash of the text, so equal texts always embed to equal vectors and
// different texts almost always differ.
package mock
