package chunker

import "errors"

var (
	// ErrInvalidConfig is returned when chunking parameters are out of range.
	ErrInvalidConfig = errors.New("invalid chunker config")

	// ErrTokenizerRequired is returned when a tokenizer is not provided.
	ErrTokenizerRequired = errors.New("tokenizer required")

	// ErrUnknownEncoding is returned when a token encoding name is not recognized.
	ErrUnknownEncoding = errors.New("unknown token encoding")

	// ErrNoTokens is returned when a document's text encodes to zero tokens.
	ErrNoTokens = errors.New("document produced no tokens")
)
