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
	"time"

	"github.com/poiesic/lexit/core"
)

// Tunable defaults. Each has a matching Option.
const (
	// DefaultWorkers is the per-stage worker pool size.
	DefaultWorkers = 4

	// DefaultMaxRetries bounds attempts against external services.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the first backoff delay; it doubles per retry.
	DefaultRetryBaseDelay = 1 * time.Second

	// DefaultEmbedBatchSize caps chunks per embedding call.
	DefaultEmbedBatchSize = 16

	// DefaultEmbedBatchTokens caps the token total per embedding call.
	DefaultEmbedBatchTokens = 8000

	// DefaultIndexBatchSize caps records per index upsert.
	DefaultIndexBatchSize = 100

	// DefaultDownloadTimeout bounds one archive download attempt.
	DefaultDownloadTimeout = 5 * time.Minute

	// DefaultProgressInterval is how many documents pass between progress
	// lines when a progress writer is configured.
	DefaultProgressInterval = 100
)

// RunConfig selects what a stage run processes.
type RunConfig struct {
	// Partitions are the partition keys (years) the run targets. At least
	// one is required; documents outside them are not touched.
	Partitions []core.Partition

	// SkipExisting makes the run skip documents whose output for the stage
	// is already complete. This is the resumability guarantee: rerunning
	// after an interruption or partial failure redoes only the unfinished
	// documents.
	SkipExisting bool
}

// Validate checks that the run targets at least one well-formed partition.
func (c RunConfig) Validate() error {
	if len(c.Partitions) == 0 {
		return ErrNoPartitions
	}
	for _, part := range c.Partitions {
		if err := core.ValidatePartition(part); err != nil {
			return err
		}
	}
	return nil
}
