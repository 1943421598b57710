package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexit/core"
)

func embedded(id core.DocID, seq int, text string, vector []float32) core.EmbeddedChunk {
	return core.EmbeddedChunk{
		Chunk: core.Chunk{
			Id:          core.ChunkID(id, seq),
			DocId:       id,
			Seq:         seq,
			Text:        text,
			TokenCount:  len(text),
			StartOffset: seq * len(text),
			EndOffset:   (seq + 1) * len(text),
		},
		Vector: vector,
	}
}

func TestFlatten(t *testing.T) {
	chunks := []core.EmbeddedChunk{
		embedded("2024-0001", 0, "first window", []float32{1, 0}),
		embedded("2024-0001", 1, "second window", []float32{0, 1}),
	}

	records := Flatten("2024", "Data Protection Act", chunks)
	require.Len(t, records, 2)

	assert.Equal(t, "2024-0001-0", records[0].Id)
	assert.Equal(t, core.DocID("2024-0001"), records[0].DocId)
	assert.Equal(t, core.Partition("2024"), records[0].Partition)
	assert.Equal(t, "Data Protection Act", records[0].Title)
	assert.Equal(t, 0, records[0].Seq)
	assert.Equal(t, "first window", records[0].Text)
	assert.Equal(t, []float32{1, 0}, records[0].Vector)

	assert.Equal(t, "2024-0001-1", records[1].Id)
	assert.Equal(t, 1, records[1].Seq)
}

func TestFlattenEmpty(t *testing.T) {
	records := Flatten("2024", "Title", nil)
	assert.Empty(t, records)
}

func TestValidateRecord(t *testing.T) {
	valid := IndexRecord{
		Id:        "2024-0001-0",
		DocId:     "2024-0001",
		Partition: "2024",
		Title:     "Act",
		Seq:       0,
		Text:      "body",
		Vector:    []float32{0.1, 0.2, 0.3},
	}

	tests := []struct {
		name    string
		mutate  func(r *IndexRecord)
		dim     int
		wantErr error
	}{
		{"valid with matching dim", func(r *IndexRecord) {}, 3, nil},
		{"valid with open dim", func(r *IndexRecord) {}, 0, nil},
		{"empty id", func(r *IndexRecord) { r.Id = "" }, 3, ErrInvalidRecord},
		{"empty doc id", func(r *IndexRecord) { r.DocId = "" }, 3, ErrInvalidRecord},
		{"empty text", func(r *IndexRecord) { r.Text = "" }, 3, ErrInvalidRecord},
		{"empty vector", func(r *IndexRecord) { r.Vector = nil }, 3, core.ErrDimensionMismatch},
		{"wrong width", func(r *IndexRecord) { r.Vector = []float32{1} }, 3, core.ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)
			err := ValidateRecord(&rec, tt.dim)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	assert.ErrorIs(t, ValidateRecord(nil, 0), ErrInvalidRecord)
}
