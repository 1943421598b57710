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


package index

import (
	"fmt"

	"github.com/poiesic/lexit/core"
)

// IndexRecord is one upsertable unit of the vector index: a chunk's vector
// plus the payload needed to render a search hit without loading the
// document store.
type IndexRecord struct {
	// Id is the chunk id. Upserts key on it.
	Id        string
	DocId     core.DocID
	Partition core.Partition
	Title     string
	Seq       int
	Text      string
	Vector    []float32
}

// SearchResult is one vector search hit.
type SearchResult struct {
	Id         string
	DocId      core.DocID
	Partition  core.Partition
	Title      string
	Text       string
	Similarity float32
}

// Flatten converts a document's embedded chunks into index records, carrying
// the document title into every record's payload.
func Flatten(partition core.Partition, title string, chunks []core.EmbeddedChunk) []IndexRecord {
	records := make([]IndexRecord, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		records[i] = IndexRecord{
			Id:        c.Id,
			DocId:     c.DocId,
			Partition: partition,
			Title:     title,
			Seq:       c.Seq,
			Text:      c.Text,
			Vector:    c.Vector,
		}
	}
	return records
}

// ValidateRecord validates a record against the collection's dimensionality.
// A dim of 0 accepts any non-empty vector.
//
// Validation rules:
//   - Id, DocId, and Text must not be empty
//   - Vector must not be empty and must match dim when dim > 0
func ValidateRecord(rec *IndexRecord, dim int) error {
	if rec == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if rec.Id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if rec.DocId == "" {
		return fmt.Errorf("%w: record %q has no document id", ErrInvalidRecord, rec.Id)
	}
	if rec.Text == "" {
		return fmt.Errorf("%w: record %q has no text", ErrInvalidRecord, rec.Id)
	}
	if len(rec.Vector) == 0 {
		return fmt.Errorf("%w: record %q has no vector", core.ErrDimensionMismatch, rec.Id)
	}
	if dim > 0 && len(rec.Vector) != dim {
		return fmt.Errorf("%w: record %q has %d, collection uses %d", core.ErrDimensionMismatch, rec.Id, len(rec.Vector), dim)
	}
	return nil
}
