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
	"fmt"

	"github.com/poiesic/lexit/core"
)

// Typed MUS wrappers for every payload the pipeline persists. Unmarshal
// requires the payload to decode completely; leftover bytes mean a
// truncated or foreign payload and surface as ErrTruncatedData.

// MarshalRawDocument serializes a RawDocument to bytes.
func MarshalRawDocument(doc *core.RawDocument) []byte {
	buf := make([]byte, core.RawDocumentMUS.Size(*doc))
	core.RawDocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalRawDocument deserializes a RawDocument from bytes.
func UnmarshalRawDocument(data []byte) (*core.RawDocument, error) {
	doc, n, err := core.RawDocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: raw document decoded %d of %d bytes", ErrTruncatedData, n, len(data))
	}
	return &doc, nil
}

// MarshalParsedDocument serializes a ParsedDocument to bytes.
func MarshalParsedDocument(doc *core.ParsedDocument) []byte {
	buf := make([]byte, core.ParsedDocumentMUS.Size(*doc))
	core.ParsedDocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalParsedDocument deserializes a ParsedDocument from bytes.
func UnmarshalParsedDocument(data []byte) (*core.ParsedDocument, error) {
	doc, n, err := core.ParsedDocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: parsed document decoded %d of %d bytes", ErrTruncatedData, n, len(data))
	}
	return &doc, nil
}

// MarshalChunks serializes a document's chunk sequence to bytes.
func MarshalChunks(chunks []core.Chunk) []byte {
	buf := make([]byte, core.ChunksMUS.Size(chunks))
	core.ChunksMUS.Marshal(chunks, buf)
	return buf
}

// UnmarshalChunks deserializes a document's chunk sequence from bytes.
func UnmarshalChunks(data []byte) ([]core.Chunk, error) {
	chunks, n, err := core.ChunksMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: chunk file decoded %d of %d bytes", ErrTruncatedData, n, len(data))
	}
	return chunks, nil
}

// MarshalEmbeddedChunks serializes a document's embedded chunk sequence to bytes.
func MarshalEmbeddedChunks(chunks []core.EmbeddedChunk) []byte {
	buf := make([]byte, core.EmbeddedChunksMUS.Size(chunks))
	core.EmbeddedChunksMUS.Marshal(chunks, buf)
	return buf
}

// UnmarshalEmbeddedChunks deserializes a document's embedded chunk sequence from bytes.
func UnmarshalEmbeddedChunks(data []byte) ([]core.EmbeddedChunk, error) {
	chunks, n, err := core.EmbeddedChunksMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: embedded file decoded %d of %d bytes", ErrTruncatedData, n, len(data))
	}
	return chunks, nil
}

// MarshalStageMark serializes a StageMark to bytes.
func MarshalStageMark(mark *core.StageMark) []byte {
	buf := make([]byte, core.StageMarkMUS.Size(*mark))
	core.StageMarkMUS.Marshal(*mark, buf)
	return buf
}

// UnmarshalStageMark deserializes a StageMark from bytes.
func UnmarshalStageMark(data []byte) (*core.StageMark, error) {
	mark, n, err := core.StageMarkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: stage mark decoded %d of %d bytes", ErrTruncatedData, n, len(data))
	}
	return &mark, nil
}

// MarshalIndexReceipt serializes an IndexReceipt to bytes.
func MarshalIndexReceipt(receipt *core.IndexReceipt) []byte {
	buf := make([]byte, core.IndexReceiptMUS.Size(*receipt))
	core.IndexReceiptMUS.Marshal(*receipt, buf)
	return buf
}

// UnmarshalIndexReceipt deserializes an IndexReceipt from bytes.
func UnmarshalIndexReceipt(data []byte) (*core.IndexReceipt, error) {
	receipt, n, err := core.IndexReceiptMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: index receipt decoded %d of %d bytes", ErrTruncatedData, n, len(data))
	}
	return &receipt, nil
}
