package lexit

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexit/ai/mock"
	"github.com/poiesic/lexit/chunker"
	"github.com/poiesic/lexit/core"
	"github.com/poiesic/lexit/pipeline"
)

// runeTokenizer treats every rune as one token, keeping tests independent
// of the tiktoken BPE tables (which the default tokenizer fetches).
type runeTokenizer struct{}

func (runeTokenizer) Encode(text string) []int {
	runes := []rune(text)
	tokens := make([]int, len(runes))
	for i, r := range runes {
		tokens[i] = int(r)
	}
	return tokens
}

func (runeTokenizer) Decode(tokens []int) string {
	runes := make([]rune, len(tokens))
	for i, tok := range tokens {
		runes[i] = rune(tok)
	}
	return string(runes)
}

// openTestCorpus opens a corpus under a temp dir with hermetic
// collaborators: a mock embedder and rune tokens.
func openTestCorpus(t *testing.T, opts ...CorpusOption) *Corpus {
	t.Helper()
	base := []CorpusOption{
		WithEmbedder(mock.NewEmbedderWithDimensions(8)),
		WithTokenizer(runeTokenizer{}),
		WithChunking(chunker.Config{MaxTokens: 32, OverlapTokens: 8}),
	}
	corpus, err := Open(filepath.Join(t.TempDir(), "corpus"), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { corpus.Close() })
	return corpus
}

func buildArchive(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bulk.zip")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func statuteXML(title string, sections ...string) string {
	var b strings.Builder
	b.WriteString(`<statute id="x" date="2024-03-15" type="act">`)
	fmt.Fprintf(&b, "<title>%s</title>", title)
	for i, text := range sections {
		fmt.Fprintf(&b, `<section number="%d"><heading>Section %d</heading><paragraph>%s</paragraph></section>`, i+1, i+1, text)
	}
	b.WriteString(`</statute>`)
	return b.String()
}

func TestOpen(t *testing.T) {
	t.Run("create new corpus", func(t *testing.T) {
		corpus := openTestCorpus(t)

		// Verify components are initialized
		assert.NotNil(t, corpus.Store())
		assert.NotNil(t, corpus.Embedder())
		assert.NotNil(t, corpus.Sink())
		assert.NotNil(t, corpus.tokenizer)
		assert.NotNil(t, corpus.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to open a corpus where the blob dir collides with a file
		tmpDir := t.TempDir()
		err := os.WriteFile(filepath.Join(tmpDir, "blobs"), []byte("test"), 0644)
		require.NoError(t, err)

		corpus, err := Open(tmpDir,
			WithEmbedder(mock.NewEmbedder()),
			WithTokenizer(runeTokenizer{}),
		)
		assert.Error(t, err)
		assert.Nil(t, corpus)
	})
}

func TestCorpus_Close(t *testing.T) {
	corpus, err := Open(filepath.Join(t.TempDir(), "corpus"),
		WithEmbedder(mock.NewEmbedder()),
		WithTokenizer(runeTokenizer{}),
	)
	require.NoError(t, err)
	require.NotNil(t, corpus)

	err = corpus.Close()
	assert.NoError(t, err)
}

func TestCorpus_FactoryMethods(t *testing.T) {
	corpus := openTestCorpus(t)

	t.Run("can create pipeline", func(t *testing.T) {
		p, err := corpus.NewPipeline()
		require.NoError(t, err)
		require.NotNil(t, p)
		p.Release()
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := corpus.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})

	t.Run("pipeline options override corpus wiring", func(t *testing.T) {
		p, err := corpus.NewPipeline(pipeline.WithChunking(chunker.Config{MaxTokens: 16, OverlapTokens: 4}))
		require.NoError(t, err)
		require.NotNil(t, p)
		p.Release()
	})
}

func TestCorpus_IngestAndSearch(t *testing.T) {
	corpus := openTestCorpus(t)

	archive := buildArchive(t, map[string]string{
		"2024/2024-0001.xml": statuteXML("Data Protection Act", "Personal data shall be processed lawfully and fairly.", "The supervisory authority may impose fines."),
		"2024/2024-0002.xml": statuteXML("Procurement Act", "Contracting entities shall publish notices of intent."),
	})

	p, err := corpus.NewPipeline(pipeline.WithRetry(2, time.Millisecond))
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()
	cfg := pipeline.RunConfig{Partitions: []core.Partition{"2024"}, SkipExisting: true}

	reports, err := p.Run(ctx, archive, cfg)
	require.NoError(t, err)
	require.Len(t, reports, 5)
	for _, report := range reports {
		assert.Empty(t, report.Failed, "stage %s", report.Stage)
	}

	count, err := corpus.Sink().Count(ctx)
	require.NoError(t, err)
	assert.Positive(t, count)

	searcher, err := corpus.NewSearcher()
	require.NoError(t, err)

	results, err := searcher.FindSimilar(ctx, "personal data processed lawfully", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, res := range results {
		assert.NotEmpty(t, res.Hit.Id)
		assert.NotEmpty(t, res.Hit.Text)
		assert.Equal(t, core.Partition("2024"), res.Hit.Partition)
	}
}
