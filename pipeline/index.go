package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/lexit/blob"
	"github.com/poiesic/lexit/core"
	"github.com/poiesic/lexit/index"
)

// Index flattens embedded chunks into index records and upserts them into
// the sink, one document at a time in bounded batches. Record ids are
// deterministic, so reindexing a document overwrites its records instead of
// duplicating them. An unreachable collection aborts the stage; a failing
// document only fails that document.
func (p *Pipeline) Index(ctx context.Context, cfg RunConfig) (*core.StageReport, error) {
	if p.sink == nil {
		return nil, ErrSinkRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tasks, err := p.listInputs(ctx, core.StageEmbed, cfg.Partitions)
	if err != nil {
		return nil, err
	}

	dim, err := p.collectionDimension(ctx, tasks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStageFatal, err)
	}
	if err := p.sink.EnsureCollection(ctx, dim); err != nil {
		return nil, fmt.Errorf("%w: ensure collection: %w", ErrStageFatal, err)
	}

	p.logger.Info("stage starting",
		"stage", core.StageIndex.String(),
		"documents", len(tasks),
		"dimensions", dim,
		"skipExisting", cfg.SkipExisting,
	)
	report := p.forEachDoc(ctx, core.StageIndex, cfg, tasks, p.indexDoc(cfg))
	return report, ctx.Err()
}

func (p *Pipeline) indexDoc(cfg RunConfig) docFunc {
	return func(ctx context.Context, task docTask) (docStatus, error) {
		input, err := p.store.Get(ctx, task.key)
		if err != nil {
			return docProcessed, fmt.Errorf("load embedded chunks: %w", err)
		}
		inputHash := core.HashBytes(input)

		if cfg.SkipExisting {
			done, err := p.manifest.IsComplete(ctx, core.StageIndex, task.partition, task.id, inputHash)
			if err != nil {
				return docProcessed, err
			}
			if done {
				return docSkipped, nil
			}
		}

		chunks, err := blob.UnmarshalEmbeddedChunks(input)
		if err != nil {
			return docProcessed, fmt.Errorf("decode embedded chunks: %w", err)
		}

		records := index.Flatten(task.partition, p.documentTitle(ctx, task), chunks)
		for start := 0; start < len(records); start += p.indexBatchSize {
			end := min(start+p.indexBatchSize, len(records))
			batch := records[start:end]

			err := RetryWithBackoff(ctx, func() error {
				return p.sink.Upsert(ctx, batch)
			}, p.maxRetries, p.retryBaseDelay, index.IsRetryable)
			if err != nil {
				return docProcessed, fmt.Errorf("upsert records %d-%d: %w", start, end-1, err)
			}
		}

		receipt := core.IndexReceipt{
			DocId:     task.id,
			Records:   len(records),
			IndexedAt: time.Now().UTC(),
		}
		key := blob.StageKey(core.StageIndex, task.partition, task.id)
		if err := p.store.Put(ctx, key, blob.MarshalIndexReceipt(&receipt)); err != nil {
			return docProcessed, fmt.Errorf("store index receipt: %w", err)
		}
		if err := p.manifest.Mark(ctx, core.StageIndex, task.partition, task.id, inputHash); err != nil {
			return docProcessed, fmt.Errorf("mark index complete: %w", err)
		}
		return docProcessed, nil
	}
}

// documentTitle loads the parsed document's title for the index payload.
// Missing metadata degrades to an empty title rather than failing the
// document; the chunk text is what gets searched.
func (p *Pipeline) documentTitle(ctx context.Context, task docTask) string {
	data, err := p.store.Get(ctx, blob.StageKey(core.StageParse, task.partition, task.id))
	if err != nil {
		p.logger.Debug("no parsed document for title", "doc", task.id, "err", err)
		return ""
	}
	doc, err := blob.UnmarshalParsedDocument(data)
	if err != nil {
		p.logger.Debug("undecodable parsed document for title", "doc", task.id, "err", err)
		return ""
	}
	return doc.Title
}

// collectionDimension decides the sink collection's vector width: the
// pipeline's adopted width when one is set, otherwise the width found in
// the first embedded chunk.
func (p *Pipeline) collectionDimension(ctx context.Context, tasks []docTask) (int, error) {
	if dim := p.configuredDimension(); dim > 0 {
		return dim, nil
	}

	data, err := p.store.Get(ctx, tasks[0].key)
	if err != nil {
		return 0, fmt.Errorf("load embedded chunks for dimensionality: %w", err)
	}
	chunks, err := blob.UnmarshalEmbeddedChunks(data)
	if err != nil {
		return 0, fmt.Errorf("decode embedded chunks for dimensionality: %w", err)
	}
	if len(chunks) == 0 || len(chunks[0].Vector) == 0 {
		return 0, fmt.Errorf("embedded chunks at %s carry no vectors", tasks[0].key)
	}
	return len(chunks[0].Vector), nil
}
