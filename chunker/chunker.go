// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chunker

import (
	"fmt"

	"github.com/poiesic/lexit/core"
)

const (
	// DefaultMaxTokens is the default chunk window size.
	DefaultMaxTokens = 512

	// DefaultOverlapTokens is the default overlap between adjacent windows.
	DefaultOverlapTokens = 64
)

// Config holds the chunk window parameters.
//
// Validation rules:
//   - MaxTokens must be positive
//   - OverlapTokens must not be negative
//   - OverlapTokens must be strictly smaller than MaxTokens (every window
//     must advance)
type Config struct {
	// MaxTokens is the maximum number of tokens per chunk.
	MaxTokens int

	// OverlapTokens is the number of trailing tokens repeated at the start
	// of the next chunk.
	OverlapTokens int
}

// DefaultConfig returns the standard chunking configuration.
func DefaultConfig() Config {
	return Config{
		MaxTokens:     DefaultMaxTokens,
		OverlapTokens: DefaultOverlapTokens,
	}
}

// Validate checks the configuration against the rules above.
func (c Config) Validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive, got %d", ErrInvalidConfig, c.MaxTokens)
	}
	if c.OverlapTokens < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidConfig, c.OverlapTokens)
	}
	if c.OverlapTokens >= c.MaxTokens {
		return fmt.Errorf("%w: overlap %d must be smaller than max tokens %d", ErrInvalidConfig, c.OverlapTokens, c.MaxTokens)
	}
	return nil
}

// Chunker splits parsed documents into overlapping token windows.
// It is safe for concurrent use if its Tokenizer is.
type Chunker struct {
	cfg Config
	tok Tokenizer
}

// New creates a Chunker with the given configuration and tokenizer.
func New(cfg Config, tok Tokenizer) (*Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, ErrTokenizerRequired
	}
	return &Chunker{cfg: cfg, tok: tok}, nil
}

// Split chunks the document's normalized text into token windows. Offsets
// index into the document's token sequence as half-open ranges; adjacent
// chunks share the configured overlap. Chunks are returned in sequence
// order, and a document always yields at least one chunk.
func (c *Chunker) Split(doc *core.ParsedDocument) ([]core.Chunk, error) {
	if err := core.ValidateParsedDocument(doc); err != nil {
		return nil, err
	}

	tokens := c.tok.Encode(doc.NormalizedText())
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: document %q", ErrNoTokens, doc.Id)
	}

	chunks := make([]core.Chunk, 0, chunkCount(len(tokens), c.cfg))
	start := 0
	for seq := 0; ; seq++ {
		end := start + c.cfg.MaxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := core.Chunk{
			Id:          core.ChunkID(doc.Id, seq),
			DocId:       doc.Id,
			Seq:         seq,
			Text:        c.tok.Decode(tokens[start:end]),
			TokenCount:  end - start,
			StartOffset: start,
			EndOffset:   end,
		}
		if err := core.ValidateChunk(&chunk); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
		if end == len(tokens) {
			break
		}
		start = end - c.cfg.OverlapTokens
	}
	return chunks, nil
}

// chunkCount returns the number of windows the walk in Split emits for a
// token count: one full window plus one per step of MaxTokens-OverlapTokens
// over the remainder.
func chunkCount(tokenCount int, cfg Config) int {
	if tokenCount <= cfg.MaxTokens {
		return 1
	}
	step := cfg.MaxTokens - cfg.OverlapTokens
	return 1 + (tokenCount-cfg.MaxTokens+step-1)/step
}
