package pipeline

import (
	"context"
	"fmt"

	"github.com/poiesic/lexit/blob"
	"github.com/poiesic/lexit/core"
)

// Parse converts fetched raw documents into normalized parsed documents.
// A document that the parser rejects (malformed markup, no text) is a
// per-document failure; the stage keeps going.
func (p *Pipeline) Parse(ctx context.Context, cfg RunConfig) (*core.StageReport, error) {
	return p.runDocStage(ctx, core.StageParse, core.StageFetch, cfg, p.parseDoc(cfg))
}

func (p *Pipeline) parseDoc(cfg RunConfig) docFunc {
	return func(ctx context.Context, task docTask) (docStatus, error) {
		input, err := p.store.Get(ctx, task.key)
		if err != nil {
			return docProcessed, fmt.Errorf("load raw document: %w", err)
		}
		inputHash := core.HashBytes(input)

		if cfg.SkipExisting {
			done, err := p.manifest.IsComplete(ctx, core.StageParse, task.partition, task.id, inputHash)
			if err != nil {
				return docProcessed, err
			}
			if done {
				return docSkipped, nil
			}
		}

		raw, err := blob.UnmarshalRawDocument(input)
		if err != nil {
			return docProcessed, fmt.Errorf("decode raw document: %w", err)
		}

		doc, err := p.parser.Parse(raw)
		if err != nil {
			return docProcessed, err
		}

		key := blob.StageKey(core.StageParse, task.partition, task.id)
		if err := p.store.Put(ctx, key, blob.MarshalParsedDocument(doc)); err != nil {
			return docProcessed, fmt.Errorf("store parsed document: %w", err)
		}
		if err := p.manifest.Mark(ctx, core.StageParse, task.partition, task.id, inputHash); err != nil {
			return docProcessed, fmt.Errorf("mark parse complete: %w", err)
		}
		return docProcessed, nil
	}
}
