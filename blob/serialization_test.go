package blob

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexit/core"
)

func TestMarshalUnmarshalRawDocument(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	doc := &core.RawDocument{
		Id:           "2024-0123",
		Partition:    "2024",
		SourceName:   "2024/2024-0123.xml",
		SourceFormat: core.FormatXML,
		Content:      []byte("<statute id=\"2024/123\"/>"),
		FetchedAt:    now,
	}

	data := MarshalRawDocument(doc)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalRawDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Id, decoded.Id)
	assert.Equal(t, doc.Partition, decoded.Partition)
	assert.Equal(t, doc.SourceName, decoded.SourceName)
	assert.Equal(t, doc.SourceFormat, decoded.SourceFormat)
	assert.Equal(t, doc.Content, decoded.Content)
	assert.True(t, doc.FetchedAt.Equal(decoded.FetchedAt))
}

func TestMarshalUnmarshalParsedDocument(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	doc := &core.ParsedDocument{
		Id:        "2024-0123",
		Partition: "2024",
		Title:     "Data Act",
		Sections: []core.Section{
			{Number: "1", Heading: "Scope", Text: "This act applies."},
			{Number: "2", Heading: "Terms", Text: "Terms are defined."},
			{Number: "3", Heading: "Entry", Text: "Enters into force."},
		},
		DocumentType: "act",
		Date:         time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		ParsedAt:     now,
	}

	decoded, err := UnmarshalParsedDocument(MarshalParsedDocument(doc))
	require.NoError(t, err)
	assert.Equal(t, doc.Id, decoded.Id)
	assert.Equal(t, doc.Title, decoded.Title)
	assert.Equal(t, doc.DocumentType, decoded.DocumentType)
	assert.True(t, doc.Date.Equal(decoded.Date))
	assert.True(t, doc.ParsedAt.Equal(decoded.ParsedAt))

	// Section order must survive the round trip.
	require.Len(t, decoded.Sections, 3)
	assert.Equal(t, doc.Sections, decoded.Sections)
}

func TestMarshalUnmarshalChunks(t *testing.T) {
	chunks := []core.Chunk{
		{Id: core.ChunkID("2024-0123", 0), DocId: "2024-0123", Seq: 0, Text: "first window", TokenCount: 2, StartOffset: 0, EndOffset: 2},
		{Id: core.ChunkID("2024-0123", 1), DocId: "2024-0123", Seq: 1, Text: "second window", TokenCount: 2, StartOffset: 1, EndOffset: 3},
	}

	decoded, err := UnmarshalChunks(MarshalChunks(chunks))
	require.NoError(t, err)
	assert.Equal(t, chunks, decoded)

	// Empty chunk file round-trips to empty.
	decoded, err = UnmarshalChunks(MarshalChunks(nil))
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestMarshalUnmarshalEmbeddedChunks(t *testing.T) {
	chunks := []core.EmbeddedChunk{
		{
			Chunk:  core.Chunk{Id: core.ChunkID("2024-0123", 0), DocId: "2024-0123", Seq: 0, Text: "window", TokenCount: 1, StartOffset: 0, EndOffset: 1},
			Vector: []float32{0.25, -0.5, 1.0},
		},
		{
			Chunk:  core.Chunk{Id: core.ChunkID("2024-0123", 1), DocId: "2024-0123", Seq: 1, Text: "next", TokenCount: 1, StartOffset: 1, EndOffset: 2},
			Vector: []float32{0.125, 0.75, -1.0},
		},
	}

	decoded, err := UnmarshalEmbeddedChunks(MarshalEmbeddedChunks(chunks))
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, chunks[0].Chunk, decoded[0].Chunk)
	assert.Equal(t, chunks[0].Vector, decoded[0].Vector)
	assert.Equal(t, chunks[1].Vector, decoded[1].Vector)
}

func TestMarshalUnmarshalStageMark(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	mark := &core.StageMark{
		DocId:       "2024-0123",
		Stage:       core.StageEmbed,
		InputHash:   core.HashBytes([]byte("chunk file bytes")),
		CompletedAt: now,
	}

	decoded, err := UnmarshalStageMark(MarshalStageMark(mark))
	require.NoError(t, err)
	assert.Equal(t, mark.DocId, decoded.DocId)
	assert.Equal(t, mark.Stage, decoded.Stage)
	assert.Equal(t, mark.InputHash, decoded.InputHash)
	assert.True(t, mark.CompletedAt.Equal(decoded.CompletedAt))
}

func TestMarshalUnmarshalIndexReceipt(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	receipt := &core.IndexReceipt{
		DocId:     "2024-0123",
		Records:   7,
		IndexedAt: now,
	}

	decoded, err := UnmarshalIndexReceipt(MarshalIndexReceipt(receipt))
	require.NoError(t, err)
	assert.Equal(t, receipt.DocId, decoded.DocId)
	assert.Equal(t, receipt.Records, decoded.Records)
	assert.True(t, receipt.IndexedAt.Equal(decoded.IndexedAt))
}

func TestUnmarshal_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalRawDocument(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestUnmarshal_Truncated(t *testing.T) {
	doc := &core.RawDocument{
		Id:           "2024-0123",
		Partition:    "2024",
		SourceFormat: core.FormatXML,
		Content:      []byte("payload bytes that get cut off"),
		FetchedAt:    time.Now().UTC(),
	}
	data := MarshalRawDocument(doc)

	_, err := UnmarshalRawDocument(data[:len(data)/2])
	assert.Error(t, err)
}

func TestUnmarshal_TrailingGarbage(t *testing.T) {
	mark := &core.StageMark{DocId: "2024-0123", Stage: core.StageParse, InputHash: 1, CompletedAt: time.Now().UTC()}
	data := append(MarshalStageMark(mark), 0xFF)

	_, err := UnmarshalStageMark(data)
	assert.ErrorIs(t, err, ErrTruncatedData)
}
