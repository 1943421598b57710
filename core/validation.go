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


package core

import (
	"fmt"
	"strings"
)

// ValidateDocID validates a document id according to domain rules.
//
// Validation rules:
//   - must not be empty
//   - must not contain '/' (ids become blob key segments)
//   - must not contain whitespace
func ValidateDocID(id DocID) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidDocID)
	}
	if strings.ContainsAny(string(id), "/ \t\n") {
		return fmt.Errorf("%w: %q contains separators", ErrInvalidDocID, id)
	}
	return nil
}

// ValidatePartition validates a partition key. Same segment rules as DocID.
func ValidatePartition(p Partition) error {
	if p == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPartition)
	}
	if strings.ContainsAny(string(p), "/ \t\n") {
		return fmt.Errorf("%w: %q contains separators", ErrInvalidPartition, p)
	}
	return nil
}

// ValidateStage validates that a Stage has a known value.
func ValidateStage(s Stage) error {
	if s < StageFetch || s > StageIndex {
		return fmt.Errorf("%w: value %d", ErrInvalidStage, s)
	}
	return nil
}

// ValidateRawDocument validates a RawDocument according to domain rules.
//
// Validation rules:
//   - Id and Partition must be valid key segments
//   - Content must not be empty
//
// NOT validated (recorded as fetched):
//   - SourceFormat (unknown formats parse through the text fallback)
//   - FetchedAt (set by the fetch stage)
func ValidateRawDocument(doc *RawDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidRawDocument)
	}
	if err := ValidateDocID(doc.Id); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRawDocument, err)
	}
	if err := ValidatePartition(doc.Partition); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRawDocument, err)
	}
	if len(doc.Content) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRawDocument, ErrEmptyContent)
	}
	return nil
}

// ValidateParsedDocument validates a ParsedDocument according to domain rules.
//
// Validation rules:
//   - Id and Partition must be valid key segments
//   - normalized text must not be empty (a document with neither title nor
//     section text cannot be chunked)
//
// NOT validated:
//   - Title, Date, DocumentType (best-effort metadata may be missing)
func ValidateParsedDocument(doc *ParsedDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidParsedDocument)
	}
	if err := ValidateDocID(doc.Id); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParsedDocument, err)
	}
	if err := ValidatePartition(doc.Partition); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParsedDocument, err)
	}
	if doc.NormalizedText() == "" {
		return fmt.Errorf("%w: %w", ErrInvalidParsedDocument, ErrEmptyText)
	}
	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Id must equal ChunkID(DocId, Seq)
//   - Text must not be empty
//   - offsets must be a non-empty half-open range matching TokenCount
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if err := ValidateDocID(chunk.DocId); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}
	if chunk.Id != ChunkID(chunk.DocId, chunk.Seq) {
		return fmt.Errorf("%w: id %q does not match document %q seq %d", ErrInvalidChunk, chunk.Id, chunk.DocId, chunk.Seq)
	}
	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}
	if chunk.StartOffset < 0 || chunk.EndOffset <= chunk.StartOffset {
		return fmt.Errorf("%w: offsets [%d,%d)", ErrInvalidChunk, chunk.StartOffset, chunk.EndOffset)
	}
	if chunk.TokenCount != chunk.EndOffset-chunk.StartOffset {
		return fmt.Errorf("%w: token count %d does not match offsets [%d,%d)", ErrInvalidChunk, chunk.TokenCount, chunk.StartOffset, chunk.EndOffset)
	}
	return nil
}

// ValidateEmbeddedChunk validates an EmbeddedChunk against the run's
// dimensionality. A dim of 0 accepts any non-empty vector.
func ValidateEmbeddedChunk(chunk *EmbeddedChunk, dim int) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if err := ValidateChunk(&chunk.Chunk); err != nil {
		return err
	}
	if len(chunk.Vector) == 0 {
		return fmt.Errorf("%w: empty vector for chunk %q", ErrDimensionMismatch, chunk.Id)
	}
	if dim > 0 && len(chunk.Vector) != dim {
		return fmt.Errorf("%w: chunk %q has %d, run uses %d", ErrDimensionMismatch, chunk.Id, len(chunk.Vector), dim)
	}
	return nil
}
