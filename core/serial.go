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
	"time"

	com "github.com/mus-format/common-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for every entity the pipeline persists. Field order
// follows struct declaration order; times travel as microsecond Unix
// values; vectors as a count followed by raw float32s.

// RawDocumentMUS serializes RawDocument values.
var RawDocumentMUS = rawDocumentMUS{}

// SectionMUS serializes Section values.
var SectionMUS = sectionMUS{}

// ParsedDocumentMUS serializes ParsedDocument values.
var ParsedDocumentMUS = parsedDocumentMUS{}

// ChunkMUS serializes Chunk values.
var ChunkMUS = chunkMUS{}

// ChunksMUS serializes a document's full chunk sequence.
var ChunksMUS = chunksMUS{}

// EmbeddedChunkMUS serializes EmbeddedChunk values.
var EmbeddedChunkMUS = embeddedChunkMUS{}

// EmbeddedChunksMUS serializes a document's full embedded chunk sequence.
var EmbeddedChunksMUS = embeddedChunksMUS{}

// StageMarkMUS serializes StageMark values.
var StageMarkMUS = stageMarkMUS{}

// IndexReceiptMUS serializes IndexReceipt values.
var IndexReceiptMUS = indexReceiptMUS{}

type rawDocumentMUS struct{}

func (s rawDocumentMUS) Size(v RawDocument) (size int) {
	size = ord.String.Size(string(v.Id))
	size += ord.String.Size(string(v.Partition))
	size += ord.String.Size(v.SourceName)
	size += ord.String.Size(string(v.SourceFormat))
	size += sizeByteSlice(v.Content)
	size += sizeTime(v.FetchedAt)
	return
}

func (s rawDocumentMUS) Marshal(v RawDocument, bs []byte) (n int) {
	n = ord.String.Marshal(string(v.Id), bs)
	n += ord.String.Marshal(string(v.Partition), bs[n:])
	n += ord.String.Marshal(v.SourceName, bs[n:])
	n += ord.String.Marshal(string(v.SourceFormat), bs[n:])
	n += marshalByteSlice(v.Content, bs[n:])
	n += marshalTime(v.FetchedAt, bs[n:])
	return
}

func (s rawDocumentMUS) Unmarshal(bs []byte) (v RawDocument, n int, err error) {
	var (
		n1  int
		str string
	)
	str, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Id = DocID(str)
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Partition = Partition(str)
	v.SourceName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceFormat = SourceFormat(str)
	v.Content, n1, err = unmarshalByteSlice(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FetchedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

type sectionMUS struct{}

func (s sectionMUS) Size(v Section) (size int) {
	size = ord.String.Size(v.Number)
	size += ord.String.Size(v.Heading)
	size += ord.String.Size(v.Text)
	return
}

func (s sectionMUS) Marshal(v Section, bs []byte) (n int) {
	n = ord.String.Marshal(v.Number, bs)
	n += ord.String.Marshal(v.Heading, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	return
}

func (s sectionMUS) Unmarshal(bs []byte) (v Section, n int, err error) {
	var n1 int
	v.Number, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Heading, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

type parsedDocumentMUS struct{}

func (s parsedDocumentMUS) Size(v ParsedDocument) (size int) {
	size = ord.String.Size(string(v.Id))
	size += ord.String.Size(string(v.Partition))
	size += ord.String.Size(v.Title)
	size += varint.Int.Size(len(v.Sections))
	for i := range v.Sections {
		size += SectionMUS.Size(v.Sections[i])
	}
	size += ord.String.Size(v.DocumentType)
	size += sizeTime(v.Date)
	size += sizeTime(v.ParsedAt)
	return
}

func (s parsedDocumentMUS) Marshal(v ParsedDocument, bs []byte) (n int) {
	n = ord.String.Marshal(string(v.Id), bs)
	n += ord.String.Marshal(string(v.Partition), bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += varint.Int.Marshal(len(v.Sections), bs[n:])
	for i := range v.Sections {
		n += SectionMUS.Marshal(v.Sections[i], bs[n:])
	}
	n += ord.String.Marshal(v.DocumentType, bs[n:])
	n += marshalTime(v.Date, bs[n:])
	n += marshalTime(v.ParsedAt, bs[n:])
	return
}

func (s parsedDocumentMUS) Unmarshal(bs []byte) (v ParsedDocument, n int, err error) {
	var (
		n1     int
		str    string
		length int
	)
	str, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Id = DocID(str)
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Partition = Partition(str)
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length < 0 {
		err = com.ErrNegativeLength
		return
	}
	if length > 0 {
		v.Sections = make([]Section, length)
		for i := 0; i < length; i++ {
			v.Sections[i], n1, err = SectionMUS.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	v.DocumentType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Date, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ParsedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

type chunkMUS struct{}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = ord.String.Size(v.Id)
	size += ord.String.Size(string(v.DocId))
	size += varint.Int.Size(v.Seq)
	size += ord.String.Size(v.Text)
	size += varint.Int.Size(v.TokenCount)
	size += varint.Int.Size(v.StartOffset)
	size += varint.Int.Size(v.EndOffset)
	return
}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += ord.String.Marshal(string(v.DocId), bs[n:])
	n += varint.Int.Marshal(v.Seq, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.Int.Marshal(v.TokenCount, bs[n:])
	n += varint.Int.Marshal(v.StartOffset, bs[n:])
	n += varint.Int.Marshal(v.EndOffset, bs[n:])
	return
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var (
		n1  int
		str string
	)
	v.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DocId = DocID(str)
	v.Seq, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TokenCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.StartOffset, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EndOffset, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return
}

type chunksMUS struct{}

func (s chunksMUS) Size(v []Chunk) (size int) {
	size = varint.Int.Size(len(v))
	for i := range v {
		size += ChunkMUS.Size(v[i])
	}
	return
}

func (s chunksMUS) Marshal(v []Chunk, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for i := range v {
		n += ChunkMUS.Marshal(v[i], bs[n:])
	}
	return
}

func (s chunksMUS) Unmarshal(bs []byte) (v []Chunk, n int, err error) {
	var (
		n1     int
		length int
	)
	length, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 {
		err = com.ErrNegativeLength
		return
	}
	if length == 0 {
		return
	}
	v = make([]Chunk, length)
	for i := 0; i < length; i++ {
		v[i], n1, err = ChunkMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type embeddedChunkMUS struct{}

func (s embeddedChunkMUS) Size(v EmbeddedChunk) (size int) {
	size = ChunkMUS.Size(v.Chunk)
	size += sizeVector(v.Vector)
	return
}

func (s embeddedChunkMUS) Marshal(v EmbeddedChunk, bs []byte) (n int) {
	n = ChunkMUS.Marshal(v.Chunk, bs)
	n += marshalVector(v.Vector, bs[n:])
	return
}

func (s embeddedChunkMUS) Unmarshal(bs []byte) (v EmbeddedChunk, n int, err error) {
	var n1 int
	v.Chunk, n, err = ChunkMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Vector, n1, err = unmarshalVector(bs[n:])
	n += n1
	return
}

type embeddedChunksMUS struct{}

func (s embeddedChunksMUS) Size(v []EmbeddedChunk) (size int) {
	size = varint.Int.Size(len(v))
	for i := range v {
		size += EmbeddedChunkMUS.Size(v[i])
	}
	return
}

func (s embeddedChunksMUS) Marshal(v []EmbeddedChunk, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for i := range v {
		n += EmbeddedChunkMUS.Marshal(v[i], bs[n:])
	}
	return
}

func (s embeddedChunksMUS) Unmarshal(bs []byte) (v []EmbeddedChunk, n int, err error) {
	var (
		n1     int
		length int
	)
	length, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 {
		err = com.ErrNegativeLength
		return
	}
	if length == 0 {
		return
	}
	v = make([]EmbeddedChunk, length)
	for i := 0; i < length; i++ {
		v[i], n1, err = EmbeddedChunkMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type stageMarkMUS struct{}

func (s stageMarkMUS) Size(v StageMark) (size int) {
	size = ord.String.Size(string(v.DocId))
	size += varint.Int.Size(int(v.Stage))
	size += varint.Uint64.Size(v.InputHash)
	size += sizeTime(v.CompletedAt)
	return
}

func (s stageMarkMUS) Marshal(v StageMark, bs []byte) (n int) {
	n = ord.String.Marshal(string(v.DocId), bs)
	n += varint.Int.Marshal(int(v.Stage), bs[n:])
	n += varint.Uint64.Marshal(v.InputHash, bs[n:])
	n += marshalTime(v.CompletedAt, bs[n:])
	return
}

func (s stageMarkMUS) Unmarshal(bs []byte) (v StageMark, n int, err error) {
	var (
		n1    int
		str   string
		stage int
	)
	str, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.DocId = DocID(str)
	stage, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Stage = Stage(stage)
	v.InputHash, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CompletedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

type indexReceiptMUS struct{}

func (s indexReceiptMUS) Size(v IndexReceipt) (size int) {
	size = ord.String.Size(string(v.DocId))
	size += varint.Int.Size(v.Records)
	size += sizeTime(v.IndexedAt)
	return
}

func (s indexReceiptMUS) Marshal(v IndexReceipt, bs []byte) (n int) {
	n = ord.String.Marshal(string(v.DocId), bs)
	n += varint.Int.Marshal(v.Records, bs[n:])
	n += marshalTime(v.IndexedAt, bs[n:])
	return
}

func (s indexReceiptMUS) Unmarshal(bs []byte) (v IndexReceipt, n int, err error) {
	var (
		n1  int
		str string
	)
	str, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.DocId = DocID(str)
	v.Records, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IndexedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func sizeByteSlice(v []byte) int {
	return varint.Int.Size(len(v)) + len(v)
}

func marshalByteSlice(v []byte, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	n += copy(bs[n:], v)
	return
}

func unmarshalByteSlice(bs []byte) (v []byte, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 {
		err = com.ErrNegativeLength
		return
	}
	if len(bs) < n+length {
		err = com.ErrTooSmallByteSlice
		return
	}
	if length == 0 {
		return
	}
	v = make([]byte, length)
	n += copy(v, bs[n:n+length])
	return
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	var (
		n1     int
		length int
	)
	length, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 {
		err = com.ErrNegativeLength
		return
	}
	if length == 0 {
		return
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}
