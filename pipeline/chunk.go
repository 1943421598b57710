package pipeline

import (
	"context"
	"fmt"

	"github.com/poiesic/lexit/blob"
	"github.com/poiesic/lexit/core"
)

// Chunk splits parsed documents into overlapping token windows, writing one
// chunk file per document. Chunking is deterministic: rerunning over
// unchanged parsed documents reproduces byte-identical chunk files.
func (p *Pipeline) Chunk(ctx context.Context, cfg RunConfig) (*core.StageReport, error) {
	if p.chunker == nil {
		return nil, ErrTokenizerRequired
	}
	return p.runDocStage(ctx, core.StageChunk, core.StageParse, cfg, p.chunkDoc(cfg))
}

func (p *Pipeline) chunkDoc(cfg RunConfig) docFunc {
	return func(ctx context.Context, task docTask) (docStatus, error) {
		input, err := p.store.Get(ctx, task.key)
		if err != nil {
			return docProcessed, fmt.Errorf("load parsed document: %w", err)
		}
		inputHash := core.HashBytes(input)

		if cfg.SkipExisting {
			done, err := p.manifest.IsComplete(ctx, core.StageChunk, task.partition, task.id, inputHash)
			if err != nil {
				return docProcessed, err
			}
			if done {
				return docSkipped, nil
			}
		}

		doc, err := blob.UnmarshalParsedDocument(input)
		if err != nil {
			return docProcessed, fmt.Errorf("decode parsed document: %w", err)
		}

		chunks, err := p.chunker.Split(doc)
		if err != nil {
			return docProcessed, err
		}

		key := blob.StageKey(core.StageChunk, task.partition, task.id)
		if err := p.store.Put(ctx, key, blob.MarshalChunks(chunks)); err != nil {
			return docProcessed, fmt.Errorf("store chunks: %w", err)
		}
		if err := p.manifest.Mark(ctx, core.StageChunk, task.partition, task.id, inputHash); err != nil {
			return docProcessed, fmt.Errorf("mark chunk complete: %w", err)
		}
		return docProcessed, nil
	}
}
