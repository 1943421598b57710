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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocID indicates a document id is empty or contains separators.
	ErrInvalidDocID = errors.New("invalid document id")

	// ErrInvalidPartition indicates a partition key is empty or contains separators.
	ErrInvalidPartition = errors.New("invalid partition")

	// ErrInvalidStage indicates an unknown Stage value.
	ErrInvalidStage = errors.New("invalid stage")

	// ErrInvalidRawDocument indicates a RawDocument failed validation.
	ErrInvalidRawDocument = errors.New("invalid raw document")

	// ErrInvalidParsedDocument indicates a ParsedDocument failed validation.
	ErrInvalidParsedDocument = errors.New("invalid parsed document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyText indicates a chunk or section Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrDimensionMismatch indicates a vector's length differs from the
	// dimensionality fixed for the run.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
