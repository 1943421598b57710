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


package lexit

import (
	"log/slog"
	"path/filepath"

	"github.com/poiesic/lexit/ai"
	"github.com/poiesic/lexit/ai/openai"
	"github.com/poiesic/lexit/blob"
	"github.com/poiesic/lexit/blob/badger"
	"github.com/poiesic/lexit/chunker"
	"github.com/poiesic/lexit/index"
	"github.com/poiesic/lexit/index/chromem"
	"github.com/poiesic/lexit/pipeline"
	"github.com/poiesic/lexit/search"
)

// DefaultCollection is the vector collection name used when none is
// configured.
const DefaultCollection = "lexit"

// Corpus bundles the blob store, embedding provider, vector sink, and
// tokenizer behind a single handle. It is the entry point for library
// consumers; the CLI wires the same pieces by hand to support backend
// selection flags.
type Corpus struct {
	store     blob.Store
	embedder  ai.Embedder
	sink      index.Sink
	tokenizer chunker.Tokenizer
	chunkCfg  chunker.Config
	aiConfig  *ai.Config
	logger    *slog.Logger
}

// CorpusOption configures a Corpus.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	aiConfig   *ai.Config
	collection string
	encoding   string
	chunkCfg   chunker.Config
	embedder   ai.Embedder
	sink       index.Sink
	tokenizer  chunker.Tokenizer
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) CorpusOption {
	return func(o *corpusOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithCollection sets the vector collection name. Default is
// DefaultCollection.
func WithCollection(name string) CorpusOption {
	return func(o *corpusOptions) {
		if name != "" {
			o.collection = name
		}
	}
}

// WithEncoding sets the tiktoken BPE encoding used to build the default
// tokenizer. Ignored when WithTokenizer is also given.
func WithEncoding(encoding string) CorpusOption {
	return func(o *corpusOptions) {
		if encoding != "" {
			o.encoding = encoding
		}
	}
}

// WithChunking sets the chunk window parameters used by pipelines the
// Corpus creates.
func WithChunking(cfg chunker.Config) CorpusOption {
	return func(o *corpusOptions) {
		o.chunkCfg = cfg
	}
}

// WithEmbedder replaces the default OpenAI-compatible embedder. Useful
// for tests and for providers with their own client libraries.
func WithEmbedder(embedder ai.Embedder) CorpusOption {
	return func(o *corpusOptions) {
		o.embedder = embedder
	}
}

// WithSink replaces the default embedded chromem sink.
func WithSink(sink index.Sink) CorpusOption {
	return func(o *corpusOptions) {
		o.sink = sink
	}
}

// WithTokenizer replaces the default tiktoken tokenizer.
func WithTokenizer(tok chunker.Tokenizer) CorpusOption {
	return func(o *corpusOptions) {
		o.tokenizer = tok
	}
}

// Open opens a corpus rooted at dataDir. Blobs live under dataDir/blobs
// on badger and vectors under dataDir/index on chromem unless options
// substitute other implementations.
func Open(dataDir string, opts ...CorpusOption) (*Corpus, error) {
	// Apply options
	options := &corpusOptions{
		aiConfig:   ai.DefaultConfig(), // Default if not provided
		collection: DefaultCollection,
		encoding:   chunker.DefaultEncoding,
		chunkCfg:   chunker.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open blob store
	store, err := badger.OpenStore(filepath.Join(dataDir, "blobs"), false)
	if err != nil {
		return nil, err
	}

	// Open vector sink
	sink := options.sink
	if sink == nil {
		sink, err = chromem.OpenSink(filepath.Join(dataDir, "index"), options.collection)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	// Create embedder with configured settings
	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			sink.Close()
			store.Close()
			return nil, err
		}
	}

	// Create tokenizer
	tokenizer := options.tokenizer
	if tokenizer == nil {
		tokenizer, err = chunker.NewTikTokenizer(options.encoding)
		if err != nil {
			sink.Close()
			store.Close()
			return nil, err
		}
	}

	return &Corpus{
		store:     store,
		embedder:  embedder,
		sink:      sink,
		tokenizer: tokenizer,
		chunkCfg:  options.chunkCfg,
		aiConfig:  options.aiConfig,
		logger:    slog.Default(),
	}, nil
}

func (c *Corpus) Close() error {
	// Close vector sink first
	if err := c.sink.Close(); err != nil {
		c.logger.Error("error closing vector sink", "err", err)
		return err
	}

	// Close blob store
	if err := c.store.Close(); err != nil {
		c.logger.Error("error closing blob store", "err", err)
		return err
	}
	return nil
}

func (c *Corpus) Store() blob.Store {
	return c.store
}

func (c *Corpus) Embedder() ai.Embedder {
	return c.embedder
}

func (c *Corpus) Sink() index.Sink {
	return c.sink
}

// NewPipeline creates an ingestion pipeline over the corpus. The corpus
// collaborators are applied first, so callers can still override any of
// them through opts.
func (c *Corpus) NewPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	base := []pipeline.Option{
		pipeline.WithTokenizer(c.tokenizer),
		pipeline.WithChunking(c.chunkCfg),
		pipeline.WithEmbedder(c.embedder),
		pipeline.WithSink(c.sink),
		pipeline.WithDimensions(c.aiConfig.Dimensions),
		pipeline.WithTokensPerMinute(c.aiConfig.TokensPerMinute),
	}
	return pipeline.NewPipeline(c.store, append(base, opts...)...)
}

func (c *Corpus) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(c.embedder, c.sink, opts...)
}
