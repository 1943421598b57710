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


package pipeline

import (
	"context"
	"fmt"

	"github.com/poiesic/lexit/ai"
	"github.com/poiesic/lexit/blob"
	"github.com/poiesic/lexit/core"
)

// Embed attaches vectors to every chunk of every document. Provider calls
// are batched under a chunk-count and token budget, rate limited by the
// token limiter, and retried on transient failures. A batch that exhausts
// its retries fails the whole document, so a document is embedded all or
// nothing.
func (p *Pipeline) Embed(ctx context.Context, cfg RunConfig) (*core.StageReport, error) {
	if p.embedder == nil {
		return nil, ErrEmbedderRequired
	}
	return p.runDocStage(ctx, core.StageEmbed, core.StageChunk, cfg, p.embedDoc(cfg))
}

func (p *Pipeline) embedDoc(cfg RunConfig) docFunc {
	return func(ctx context.Context, task docTask) (docStatus, error) {
		input, err := p.store.Get(ctx, task.key)
		if err != nil {
			return docProcessed, fmt.Errorf("load chunk file: %w", err)
		}
		inputHash := core.HashBytes(input)

		if cfg.SkipExisting {
			done, err := p.manifest.IsComplete(ctx, core.StageEmbed, task.partition, task.id, inputHash)
			if err != nil {
				return docProcessed, err
			}
			if done {
				return docSkipped, nil
			}
		}

		chunks, err := blob.UnmarshalChunks(input)
		if err != nil {
			return docProcessed, fmt.Errorf("decode chunk file: %w", err)
		}
		if len(chunks) == 0 {
			return docProcessed, fmt.Errorf("chunk file for %s is empty", task.id)
		}

		embedded := make([]core.EmbeddedChunk, 0, len(chunks))
		for _, batch := range batchChunks(chunks, p.embedBatchSize, p.embedBatchTokens) {
			vectors, err := p.embedBatch(ctx, batch)
			if err != nil {
				return docProcessed, err
			}
			for i := range batch {
				ec := core.EmbeddedChunk{Chunk: batch[i], Vector: vectors[i]}
				if err := core.ValidateEmbeddedChunk(&ec, p.runDimension(len(ec.Vector))); err != nil {
					return docProcessed, err
				}
				embedded = append(embedded, ec)
			}
		}

		key := blob.StageKey(core.StageEmbed, task.partition, task.id)
		if err := p.store.Put(ctx, key, blob.MarshalEmbeddedChunks(embedded)); err != nil {
			return docProcessed, fmt.Errorf("store embedded chunks: %w", err)
		}
		if err := p.manifest.Mark(ctx, core.StageEmbed, task.partition, task.id, inputHash); err != nil {
			return docProcessed, fmt.Errorf("mark embed complete: %w", err)
		}
		return docProcessed, nil
	}
}

// embedBatch runs one provider call under the token budget, retrying
// transient failures.
func (p *Pipeline) embedBatch(ctx context.Context, batch []core.Chunk) ([][]float32, error) {
	texts := make([]string, len(batch))
	tokens := 0
	for i := range batch {
		texts[i] = batch[i].Text
		tokens += batch[i].TokenCount
	}

	if err := p.limiter.Wait(ctx, tokens); err != nil {
		return nil, err
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		v, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		vectors = v
		return nil
	}, p.maxRetries, p.retryBaseDelay, ai.IsRetryable)
	if err != nil {
		return nil, fmt.Errorf("embed batch starting at chunk %s: %w", batch[0].Id, err)
	}

	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", ai.ErrBatchSizeMismatch, len(vectors), len(batch))
	}
	return vectors, nil
}

// batchChunks groups chunks into provider batches bounded by count and by
// token total. A chunk bigger than the whole token budget still ships
// alone.
func batchChunks(chunks []core.Chunk, maxChunks, maxTokens int) [][]core.Chunk {
	var batches [][]core.Chunk
	var current []core.Chunk
	tokens := 0

	for _, chunk := range chunks {
		full := len(current) >= maxChunks ||
			(maxTokens > 0 && len(current) > 0 && tokens+chunk.TokenCount > maxTokens)
		if full {
			batches = append(batches, current)
			current = nil
			tokens = 0
		}
		current = append(current, chunk)
		tokens += chunk.TokenCount
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// runDimension fixes the pipeline's vector width on first use: a configured
// dimensionality wins, otherwise the first vector's width becomes the
// pipeline's.
func (p *Pipeline) runDimension(width int) int {
	p.dimMu.Lock()
	defer p.dimMu.Unlock()
	if p.runDim == 0 {
		p.runDim = width
	}
	return p.runDim
}

// configuredDimension reads the current width without adopting one.
func (p *Pipeline) configuredDimension() int {
	p.dimMu.Lock()
	defer p.dimMu.Unlock()
	return p.runDim
}
