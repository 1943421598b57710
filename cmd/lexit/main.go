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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/lexit/ai"
	"github.com/poiesic/lexit/ai/openai"
	"github.com/poiesic/lexit/blob"
	"github.com/poiesic/lexit/blob/badger"
	"github.com/poiesic/lexit/blob/fs"
	"github.com/poiesic/lexit/chunker"
	"github.com/poiesic/lexit/core"
	"github.com/poiesic/lexit/index"
	"github.com/poiesic/lexit/index/chromem"
	"github.com/poiesic/lexit/index/qdrant"
	"github.com/poiesic/lexit/pipeline"
	"github.com/poiesic/lexit/search"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lexit",
		Usage: "Checkpointed ingestion and search for statute corpora",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Env file loaded before command flags are read",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding blobs and the embedded index",
				Value:   "./lexit_data",
			},
			&cli.StringFlag{
				Name:  "store-backend",
				Usage: "Blob store backend (badger, fs)",
				Value: "badger",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "fetch",
				Usage:  "Fetch raw documents from a bulk archive into the blob store",
				Action: fetchCommand,
				Flags:  joinFlags(sourceFlags(), stageFlags()),
			},
			{
				Name:   "parse",
				Usage:  "Parse fetched documents into normalized text",
				Action: parseCommand,
				Flags:  stageFlags(),
			},
			{
				Name:   "chunk",
				Usage:  "Split parsed documents into overlapping token windows",
				Action: chunkCommand,
				Flags:  joinFlags(stageFlags(), chunkFlags()),
			},
			{
				Name:   "embed",
				Usage:  "Embed chunks with the configured embedding service",
				Action: embedCommand,
				Flags:  joinFlags(stageFlags(), embedServiceFlags(), embedTuningFlags()),
			},
			{
				Name:   "index",
				Usage:  "Upsert embedded chunks into the search index",
				Action: indexCommand,
				Flags:  joinFlags(stageFlags(), sinkFlags(), indexTuningFlags()),
			},
			{
				Name:   "run",
				Usage:  "Run all five stages in order",
				Action: runCommand,
				Flags: joinFlags(sourceFlags(), stageFlags(), chunkFlags(),
					embedServiceFlags(), embedTuningFlags(), sinkFlags(), indexTuningFlags()),
			},
			{
				Name:   "status",
				Usage:  "Show per-stage document counts for each partition",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.IntSliceFlag{
						Name:     "years",
						Aliases:  []string{"y"},
						Usage:    "Publication years to report on",
						Required: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the index for chunks similar to a query",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: joinFlags(embedServiceFlags(), sinkFlags(), []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of hits to return",
						Value:   search.DefaultMaxHits,
					},
				}),
			},
		},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "source",
			Aliases:  []string{"s"},
			Usage:    "Bulk archive: a local zip path or an http(s) URL",
			Required: true,
		},
	}
}

func stageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntSliceFlag{
			Name:     "years",
			Aliases:  []string{"y"},
			Usage:    "Publication years to process",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "skip-existing",
			Usage: "Skip documents whose output already exists unchanged",
			Value: true,
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of documents processed concurrently",
			Value: pipeline.DefaultWorkers,
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum retry attempts for failed operations",
			Value: pipeline.DefaultMaxRetries,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 1 * time.Second,
		},
		&cli.IntFlag{
			Name:  "report-interval",
			Usage: "Report progress every N documents",
			Value: pipeline.DefaultProgressInterval,
		},
	}
}

func chunkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "max-tokens",
			Usage: "Chunk window size in tokens",
			Value: chunker.DefaultMaxTokens,
		},
		&cli.IntFlag{
			Name:  "overlap",
			Usage: "Overlap between adjacent windows in tokens",
			Value: chunker.DefaultOverlapTokens,
		},
		&cli.StringFlag{
			Name:  "encoding",
			Usage: "Tiktoken BPE encoding name",
			Value: chunker.DefaultEncoding,
		},
	}
}

func embedServiceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:     "embedding-model",
			Usage:    "Embedding model name",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "api-token",
			Usage:   "Embedding service API token",
			EnvVars: []string{"LEXIT_API_TOKEN"},
		},
	}
}

func embedTuningFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "dimensions",
			Usage: "Expected embedding vector width (0 adopts the provider's)",
		},
		&cli.IntFlag{
			Name:    "tokens-per-minute",
			Usage:   "Embedding token budget per minute (0 disables the limit)",
			EnvVars: []string{"LEXIT_TOKENS_PER_MINUTE"},
		},
		&cli.IntFlag{
			Name:  "embed-batch-size",
			Usage: "Maximum chunks per embedding request",
			Value: pipeline.DefaultEmbedBatchSize,
		},
		&cli.IntFlag{
			Name:  "embed-batch-tokens",
			Usage: "Maximum tokens per embedding request (0 disables the bound)",
			Value: pipeline.DefaultEmbedBatchTokens,
		},
	}
}

func sinkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "index-backend",
			Usage: "Search index backend (chromem, qdrant)",
			Value: "chromem",
		},
		&cli.StringFlag{
			Name:  "collection",
			Usage: "Index collection name",
			Value: "lexit",
		},
		&cli.StringFlag{
			Name:    "qdrant-url",
			Usage:   "Qdrant server URL (qdrant backend only)",
			EnvVars: []string{"LEXIT_QDRANT_URL"},
		},
		&cli.StringFlag{
			Name:    "qdrant-api-key",
			Usage:   "Qdrant API key (qdrant backend only)",
			EnvVars: []string{"LEXIT_QDRANT_API_KEY"},
		},
	}
}

func indexTuningFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "index-batch-size",
			Usage: "Maximum records per index upsert",
			Value: pipeline.DefaultIndexBatchSize,
		},
	}
}

func joinFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, group := range groups {
		flags = append(flags, group...)
	}
	return flags
}

func fetchCommand(c *cli.Context) error {
	cfg, err := runConfig(c)
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := pipeline.NewPipeline(store, stageOptions(c)...)
	if err != nil {
		return err
	}
	defer p.Release()

	report, err := p.Fetch(c.Context, c.String("source"), cfg)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	printReport(report)
	return nil
}

func parseCommand(c *cli.Context) error {
	cfg, err := runConfig(c)
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := pipeline.NewPipeline(store, stageOptions(c)...)
	if err != nil {
		return err
	}
	defer p.Release()

	report, err := p.Parse(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	printReport(report)
	return nil
}

func chunkCommand(c *cli.Context) error {
	cfg, err := runConfig(c)
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := chunkOptions(c)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(store, append(stageOptions(c), opts...)...)
	if err != nil {
		return err
	}
	defer p.Release()

	report, err := p.Chunk(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("chunk failed: %w", err)
	}
	printReport(report)
	return nil
}

func embedCommand(c *cli.Context) error {
	cfg, err := runConfig(c)
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := embedOptions(c)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(store, append(stageOptions(c), opts...)...)
	if err != nil {
		return err
	}
	defer p.Release()

	report, err := p.Embed(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("embed failed: %w", err)
	}
	printReport(report)
	return nil
}

func indexCommand(c *cli.Context) error {
	cfg, err := runConfig(c)
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	sink, err := openSink(c)
	if err != nil {
		return err
	}
	defer sink.Close()

	opts := append(stageOptions(c),
		pipeline.WithSink(sink),
		pipeline.WithIndexBatchSize(c.Int("index-batch-size")),
	)
	p, err := pipeline.NewPipeline(store, opts...)
	if err != nil {
		return err
	}
	defer p.Release()

	report, err := p.Index(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}
	printReport(report)
	return nil
}

func runCommand(c *cli.Context) error {
	cfg, err := runConfig(c)
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	sink, err := openSink(c)
	if err != nil {
		return err
	}
	defer sink.Close()

	chunkOpts, err := chunkOptions(c)
	if err != nil {
		return err
	}
	embedOpts, err := embedOptions(c)
	if err != nil {
		return err
	}

	opts := append(stageOptions(c), chunkOpts...)
	opts = append(opts, embedOpts...)
	opts = append(opts,
		pipeline.WithSink(sink),
		pipeline.WithIndexBatchSize(c.Int("index-batch-size")),
	)

	p, err := pipeline.NewPipeline(store, opts...)
	if err != nil {
		return err
	}
	defer p.Release()

	reports, err := p.Run(c.Context, c.String("source"), cfg)
	for _, report := range reports {
		printReport(report)
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	cfg, err := runConfig(c)
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := pipeline.NewPipeline(store)
	if err != nil {
		return err
	}
	defer p.Release()

	statuses, err := p.Status(c.Context, cfg.Partitions)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	for _, status := range statuses {
		fmt.Printf("%s:\n", status.Partition)
		for _, stage := range core.Stages() {
			fmt.Printf("  %-8s %d\n", stage, status.Counts[stage])
		}
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}

	embedder, err := buildEmbedder(c)
	if err != nil {
		return err
	}

	sink, err := openSink(c)
	if err != nil {
		return err
	}
	defer sink.Close()

	searcher, err := search.NewSearcher(embedder, sink)
	if err != nil {
		return err
	}

	results, err := searcher.FindSimilar(c.Context, query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, res := range results {
		fmt.Printf("%d: %s '%s' [%0.3f]\n   %s\n",
			i+1, res.Hit.DocId, res.Hit.Title, res.Score, snippet(res.Hit.Text, 160))
	}
	return nil
}

// runConfig converts the --years flag into partitions.
func runConfig(c *cli.Context) (pipeline.RunConfig, error) {
	years := c.IntSlice("years")
	partitions := make([]core.Partition, 0, len(years))
	for _, year := range years {
		partitions = append(partitions, core.PartitionForYear(year))
	}
	cfg := pipeline.RunConfig{
		Partitions:   partitions,
		SkipExisting: c.Bool("skip-existing"),
	}
	if err := cfg.Validate(); err != nil {
		return pipeline.RunConfig{}, err
	}
	return cfg, nil
}

func stageOptions(c *cli.Context) []pipeline.Option {
	return []pipeline.Option{
		pipeline.WithWorkers(c.Int("workers")),
		pipeline.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		pipeline.WithProgress(os.Stderr, c.Int("report-interval")),
	}
}

func chunkOptions(c *cli.Context) ([]pipeline.Option, error) {
	tok, err := chunker.NewTikTokenizer(c.String("encoding"))
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer: %w", err)
	}
	return []pipeline.Option{
		pipeline.WithTokenizer(tok),
		pipeline.WithChunking(chunker.Config{
			MaxTokens:     c.Int("max-tokens"),
			OverlapTokens: c.Int("overlap"),
		}),
	}, nil
}

func embedOptions(c *cli.Context) ([]pipeline.Option, error) {
	embedder, err := buildEmbedder(c)
	if err != nil {
		return nil, err
	}
	return []pipeline.Option{
		pipeline.WithEmbedder(embedder),
		pipeline.WithDimensions(c.Int("dimensions")),
		pipeline.WithTokensPerMinute(c.Int("tokens-per-minute")),
		pipeline.WithEmbedBatch(c.Int("embed-batch-size"), c.Int("embed-batch-tokens")),
	}, nil
}

func buildEmbedder(c *cli.Context) (ai.Embedder, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIToken(c.String("api-token")),
		ai.WithDimensions(c.Int("dimensions")),
		ai.WithTokensPerMinute(c.Int("tokens-per-minute")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

func openStore(c *cli.Context) (blob.Store, error) {
	dir := filepath.Join(c.String("data-dir"), "blobs")
	backend := c.String("store-backend")
	switch backend {
	case "badger":
		return badger.OpenStore(dir, false)
	case "fs":
		return fs.OpenStore(dir)
	default:
		return nil, fmt.Errorf("unknown store backend %q: must be badger or fs", backend)
	}
}

func openSink(c *cli.Context) (index.Sink, error) {
	backend := c.String("index-backend")
	switch backend {
	case "chromem":
		return chromem.OpenSink(filepath.Join(c.String("data-dir"), "index"), c.String("collection"))
	case "qdrant":
		return qdrant.NewSink(qdrant.Config{
			URL:        c.String("qdrant-url"),
			APIKey:     c.String("qdrant-api-key"),
			Collection: c.String("collection"),
		})
	default:
		return nil, fmt.Errorf("unknown index backend %q: must be chromem or qdrant", backend)
	}
}

// printReport writes a stage summary to stderr. Per-document failures are
// listed but do not change the exit code; stage-fatal errors do.
func printReport(report *core.StageReport) {
	fmt.Fprintf(os.Stderr, "%s: %d succeeded, %d skipped, %d failed in %s\n",
		report.Stage, report.Succeeded, report.Skipped, len(report.Failed),
		report.Duration.Round(time.Millisecond))
	for _, f := range report.Failed {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Id, f.Reason)
	}
}

func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func setup(c *cli.Context) error {
	// Command flags resolve their EnvVars after this hook runs, so values
	// from the env file are visible to them.
	if err := godotenv.Load(c.String("env-file")); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
