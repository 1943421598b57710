package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexit/core"
)

func TestStageNamespace(t *testing.T) {
	tests := []struct {
		stage core.Stage
		want  string
	}{
		{core.StageFetch, NamespaceRaw},
		{core.StageParse, NamespaceParsed},
		{core.StageChunk, NamespaceChunks},
		{core.StageEmbed, NamespaceEmbedded},
		{core.StageIndex, NamespaceIndexed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StageNamespace(tt.stage))
	}
}

func TestStageKey(t *testing.T) {
	key := StageKey(core.StageParse, "2024", "2024-0123")
	assert.Equal(t, "parsed/2024/2024-0123", key)
}

func TestStagePrefix_Separation(t *testing.T) {
	// "2024" must not match keys in partition "20241".
	prefix := StagePrefix(core.StageFetch, "2024")
	assert.Equal(t, "raw/2024/", prefix)

	other := StageKey(core.StageFetch, "20241", "20241-0001")
	assert.NotContains(t, other, prefix)
}

func TestManifestKey(t *testing.T) {
	key := ManifestKey(core.StageEmbed, "2024", "2024-0123")
	assert.Equal(t, "manifest/embed/2024/2024-0123", key)
}

func TestDocIDFromKey(t *testing.T) {
	id, err := DocIDFromKey("chunks/2024/2024-0123")
	require.NoError(t, err)
	assert.Equal(t, core.DocID("2024-0123"), id)

	_, err = DocIDFromKey("noslashes")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = DocIDFromKey("trailing/slash/")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestStageKeyRoundTrip(t *testing.T) {
	for _, stage := range core.Stages() {
		key := StageKey(stage, "1999", "1999-0007")
		id, err := DocIDFromKey(key)
		require.NoError(t, err)
		assert.Equal(t, core.DocID("1999-0007"), id)
	}
}
