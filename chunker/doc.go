// Package chunker splits parsed documents into overlapping token windows
// sized for embedding.
//
// Chunk boundaries are measured in tokens of a BPE encoding rather than in
// bytes or runes, so every chunk fits the embedding model's context window
// regardless of script. Adjacent chunks share a configurable number of
// overlap tokens to preserve context across window boundaries.
//
// Splitting is deterministic: the same document, configuration, and encoding
// always produce the same chunk sequence.
package chunker
