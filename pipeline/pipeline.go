package pipeline

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lexit/ai"
	"github.com/poiesic/lexit/blob"
	"github.com/poiesic/lexit/chunker"
	"github.com/poiesic/lexit/core"
	"github.com/poiesic/lexit/index"
	"github.com/poiesic/lexit/parser"
)

// Pipeline drives the five ingestion stages over a shared blob store.
// Collaborators for the later stages are optional at construction; each
// stage validates what it needs when invoked, so a fetch-only run does not
// require an embedding provider or an index sink.
type Pipeline struct {
	store    blob.Store
	manifest *blob.Manifest
	parser   *parser.Parser
	chunker  *chunker.Chunker
	embedder ai.Embedder
	limiter  *ai.TokenLimiter
	sink     index.Sink

	tokenizer chunker.Tokenizer
	chunkCfg  chunker.Config

	pool   *ants.Pool
	client *http.Client

	workers          int
	maxRetries       int
	retryBaseDelay   time.Duration
	embedBatchSize   int
	embedBatchTokens int
	indexBatchSize   int

	progress         io.Writer
	progressInterval int

	// runDim is the vector width adopted for this pipeline's lifetime:
	// the configured dimensionality, or 0 until the first embedding call
	// reveals what the provider returns.
	dimMu  sync.Mutex
	runDim int

	runID  string
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithWorkers sets the worker pool size for per-document parallelism.
// Values below 1 are raised to 1. Default is DefaultWorkers.
func WithWorkers(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		p.workers = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithTokenizer sets the tokenizer that chunk windows are measured with.
// The chunk stage refuses to run without one.
func WithTokenizer(tok chunker.Tokenizer) Option {
	return func(p *Pipeline) error {
		p.tokenizer = tok
		return nil
	}
}

// WithChunking sets the chunk window parameters. The config is validated
// during construction. Default is chunker.DefaultConfig().
func WithChunking(cfg chunker.Config) Option {
	return func(p *Pipeline) error {
		p.chunkCfg = cfg
		return nil
	}
}

// WithEmbedder sets the embedding provider the embed stage calls.
// The embed stage refuses to run without one.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(p *Pipeline) error {
		p.embedder = embedder
		return nil
	}
}

// WithSink sets the vector index the index stage upserts into.
// The index stage refuses to run without one.
func WithSink(sink index.Sink) Option {
	return func(p *Pipeline) error {
		p.sink = sink
		return nil
	}
}

// WithDimensions fixes the embedding dimensionality for the pipeline.
// 0 (the default) adopts the width of the first vector the provider
// returns; every later vector must match it either way.
func WithDimensions(dim int) Option {
	return func(p *Pipeline) error {
		if dim < 0 {
			dim = 0
		}
		p.runDim = dim
		return nil
	}
}

// WithTokensPerMinute caps embedding throughput to respect a provider
// quota. 0 disables the limiter.
func WithTokensPerMinute(tpm int) Option {
	return func(p *Pipeline) error {
		p.limiter = ai.NewTokenLimiter(tpm)
		return nil
	}
}

// WithEmbedBatch bounds provider batches by chunk count and token total.
// maxChunks below 1 is raised to 1; maxTokens <= 0 disables the token
// bound. A single chunk over the token bound still ships alone.
func WithEmbedBatch(maxChunks, maxTokens int) Option {
	return func(p *Pipeline) error {
		if maxChunks < 1 {
			maxChunks = 1
		}
		p.embedBatchSize = maxChunks
		p.embedBatchTokens = maxTokens
		return nil
	}
}

// WithIndexBatchSize bounds upsert batches sent to the index sink.
// Values below 1 are raised to 1. Default is DefaultIndexBatchSize.
func WithIndexBatchSize(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		p.indexBatchSize = n
		return nil
	}
}

// WithRetry sets the retry budget for downloads, embedding calls, and
// index upserts. maxAttempts below 1 is raised to 1; a non-positive
// baseDelay falls back to DefaultRetryBaseDelay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts < 1 {
			maxAttempts = 1
		}
		if baseDelay <= 0 {
			baseDelay = DefaultRetryBaseDelay
		}
		p.maxRetries = maxAttempts
		p.retryBaseDelay = baseDelay
		return nil
	}
}

// WithHTTPClient replaces the HTTP client used for archive downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) error {
		if client == nil {
			client = &http.Client{Timeout: DefaultDownloadTimeout}
		}
		p.client = client
		return nil
	}
}

// WithProgress writes a progress line to w every interval documents.
// interval <= 0 falls back to DefaultProgressInterval.
func WithProgress(w io.Writer, interval int) Option {
	return func(p *Pipeline) error {
		p.progress = w
		p.progressInterval = interval
		return nil
	}
}

// NewPipeline creates a pipeline over the given blob store.
func NewPipeline(store blob.Store, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	// Pipeline with defaults
	p := &Pipeline{
		store:            store,
		manifest:         blob.NewManifest(store),
		parser:           parser.New(),
		limiter:          ai.NewTokenLimiter(0),
		chunkCfg:         chunker.DefaultConfig(),
		client:           &http.Client{Timeout: DefaultDownloadTimeout},
		workers:          DefaultWorkers,
		maxRetries:       DefaultMaxRetries,
		retryBaseDelay:   DefaultRetryBaseDelay,
		embedBatchSize:   DefaultEmbedBatchSize,
		embedBatchTokens: DefaultEmbedBatchTokens,
		indexBatchSize:   DefaultIndexBatchSize,
		progressInterval: DefaultProgressInterval,
		runID:            uuid.NewString(),
		logger:           slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("run", p.runID)

	// Build the chunker after options are applied so it sees the final
	// tokenizer and window config.
	if p.tokenizer != nil {
		c, err := chunker.New(p.chunkCfg, p.tokenizer)
		if err != nil {
			return nil, err
		}
		p.chunker = c
	}

	pool, err := ants.NewPool(p.workers)
	if err != nil {
		return nil, err
	}
	p.pool = pool

	return p, nil
}

// Run executes all five stages in order over the same partitions, stopping
// at the first stage-level failure. Per-document failures do not stop the
// run; they are carried in the returned reports. Reports for stages that
// completed are returned even when a later stage fails.
func (p *Pipeline) Run(ctx context.Context, source string, cfg RunConfig) ([]*core.StageReport, error) {
	// Validate the full collaborator set up front so a misconfigured run
	// fails before any stage does work.
	if source == "" {
		return nil, ErrSourceRequired
	}
	if p.chunker == nil {
		return nil, ErrTokenizerRequired
	}
	if p.embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if p.sink == nil {
		return nil, ErrSinkRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stages := []func(context.Context) (*core.StageReport, error){
		func(ctx context.Context) (*core.StageReport, error) { return p.Fetch(ctx, source, cfg) },
		func(ctx context.Context) (*core.StageReport, error) { return p.Parse(ctx, cfg) },
		func(ctx context.Context) (*core.StageReport, error) { return p.Chunk(ctx, cfg) },
		func(ctx context.Context) (*core.StageReport, error) { return p.Embed(ctx, cfg) },
		func(ctx context.Context) (*core.StageReport, error) { return p.Index(ctx, cfg) },
	}

	reports := make([]*core.StageReport, 0, len(stages))
	for _, stage := range stages {
		report, err := stage(ctx)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

// PartitionStatus counts each stage's outputs for one partition.
type PartitionStatus struct {
	Partition core.Partition
	Counts    map[core.Stage]int
}

// Status reports how many documents each stage has completed for the given
// partitions, by counting stage outputs in the store.
func (p *Pipeline) Status(ctx context.Context, partitions []core.Partition) ([]PartitionStatus, error) {
	statuses := make([]PartitionStatus, 0, len(partitions))
	for _, part := range partitions {
		if err := core.ValidatePartition(part); err != nil {
			return nil, err
		}

		counts := make(map[core.Stage]int, len(core.Stages()))
		for _, stage := range core.Stages() {
			keys, err := p.store.List(ctx, blob.StagePrefix(stage, part))
			if err != nil {
				return nil, err
			}
			counts[stage] = len(keys)
		}
		statuses = append(statuses, PartitionStatus{Partition: part, Counts: counts})
	}
	return statuses, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
