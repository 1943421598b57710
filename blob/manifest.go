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


package blob

import (
	"context"
	"errors"
	"time"

	"github.com/poiesic/lexit/core"
)

// Manifest is the pipeline's checkpoint log: one StageMark per (stage,
// document), written only after the stage's output blob. Skip decisions
// require both the mark (with a matching input hash) and the output key,
// so a crash between the two reprocesses the document on the next run.
type Manifest struct {
	store Store
}

// NewManifest creates a Manifest over the given store.
func NewManifest(store Store) *Manifest {
	return &Manifest{store: store}
}

// Mark records that stage completed the document from an input with the
// given content hash. Call it after the output blob is durably written.
func (m *Manifest) Mark(ctx context.Context, stage core.Stage, p core.Partition, id core.DocID, inputHash uint64) error {
	mark := core.StageMark{
		DocId:       id,
		Stage:       stage,
		InputHash:   inputHash,
		CompletedAt: time.Now().UTC(),
	}
	return m.store.Put(ctx, ManifestKey(stage, p, id), MarshalStageMark(&mark))
}

// Load retrieves the mark for a document at a stage.
// Returns nil, nil if no mark exists.
func (m *Manifest) Load(ctx context.Context, stage core.Stage, p core.Partition, id core.DocID) (*core.StageMark, error) {
	data, err := m.store.Get(ctx, ManifestKey(stage, p, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return UnmarshalStageMark(data)
}

// IsComplete reports whether the document's stage output exists and was
// produced from an input matching inputHash. A missing mark, a hash
// mismatch (stale output), or a missing output blob all report false.
func (m *Manifest) IsComplete(ctx context.Context, stage core.Stage, p core.Partition, id core.DocID, inputHash uint64) (bool, error) {
	mark, err := m.Load(ctx, stage, p, id)
	if err != nil {
		return false, err
	}
	if mark == nil || mark.InputHash != inputHash {
		return false, nil
	}
	return m.store.Exists(ctx, StageKey(stage, p, id))
}

// Clear removes the mark for a document at a stage, forcing reprocessing
// on the next run. Clearing an absent mark is not an error.
func (m *Manifest) Clear(ctx context.Context, stage core.Stage, p core.Partition, id core.DocID) error {
	return m.store.Delete(ctx, ManifestKey(stage, p, id))
}
