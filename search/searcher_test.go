package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexit/ai/mock"
	"github.com/poiesic/lexit/index"
	"github.com/poiesic/lexit/index/chromem"
)

// stubSink returns canned hits and records the limits it was asked for.
type stubSink struct {
	hits   []index.SearchResult
	err    error
	limits []int
}

func (s *stubSink) EnsureCollection(ctx context.Context, dimensions int) error { return nil }

func (s *stubSink) Upsert(ctx context.Context, records []index.IndexRecord) error { return nil }

func (s *stubSink) Count(ctx context.Context) (int, error) { return len(s.hits), nil }

func (s *stubSink) Search(ctx context.Context, vector []float32, limit int) ([]index.SearchResult, error) {
	s.limits = append(s.limits, limit)
	if s.err != nil {
		return nil, s.err
	}
	hits := s.hits
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *stubSink) Close() error { return nil }

func hit(id, text string, similarity float32) index.SearchResult {
	return index.SearchResult{
		Id:         id,
		DocId:      "2024-0001",
		Partition:  "2024",
		Text:       text,
		Similarity: similarity,
	}
}

func TestNewSearcher(t *testing.T) {
	embedder := mock.NewEmbedderWithDimensions(3)
	sink := &stubSink{}

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(embedder, sink)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(embedder, sink, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(embedder, sink, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSearcher(nil, sink)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("nil sink", func(t *testing.T) {
		_, err := NewSearcher(embedder, nil)
		assert.Equal(t, ErrSinkRequired, err)
	})
}

func TestFindSimilar_EmptyIndex(t *testing.T) {
	sink, err := chromem.NewMemorySink("search-test")
	require.NoError(t, err)
	defer sink.Close()

	ctx := context.Background()
	require.NoError(t, sink.EnsureCollection(ctx, 3))

	searcher, err := NewSearcher(mock.NewEmbedderWithDimensions(3), sink)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(ctx, "data protection", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_RanksBySimilarity(t *testing.T) {
	sink := &stubSink{hits: []index.SearchResult{
		hit("2024-0001-0", "processing of biometric records", 0.91),
		hit("2024-0001-1", "retention periods for archives", 0.83),
		hit("2024-0001-2", "penalties for late disclosure", 0.64),
	}}

	searcher, err := NewSearcher(mock.NewEmbedderWithDimensions(3), sink)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "biometric data", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i := 0; i < len(results)-1; i++ {
		assert.GreaterOrEqual(t, results[i].Score, results[i+1].Score)
	}
	assert.Equal(t, "2024-0001-0", results[0].Hit.Id)
}

func TestFindSimilar_VerbatimBoost(t *testing.T) {
	// Same similarity; only the second hit carries every query word.
	sink := &stubSink{hits: []index.SearchResult{
		hit("2024-0001-0", "provisions concerning record retention", 0.80),
		hit("2024-0002-0", "biometric data means personal data resulting from specific technical processing", 0.80),
	}}

	searcher, err := NewSearcher(mock.NewEmbedderWithDimensions(3), sink)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "biometric data", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "2024-0002-0", results[0].Hit.Id, "verbatim match should outrank")
	assert.InDelta(t, 0.80+verbatimBoost, results[0].Score, 1e-6)
	assert.InDelta(t, 0.80, results[1].Score, 1e-6)
}

func TestFindSimilar_MaxHits(t *testing.T) {
	hits := make([]index.SearchResult, 30)
	for i := range hits {
		hits[i] = hit(fmt.Sprintf("2024-0001-%d", i), "statutory text", float32(30-i)/30)
	}
	sink := &stubSink{hits: hits}

	searcher, err := NewSearcher(mock.NewEmbedderWithDimensions(3), sink)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "statutory", 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	// The index query overfetches so the boost can reorder before the cut.
	require.Len(t, sink.limits, 1)
	assert.Equal(t, 5*overfetchFactor, sink.limits[0])
}

func TestFindSimilar_DefaultMaxHits(t *testing.T) {
	sink := &stubSink{}
	searcher, err := NewSearcher(mock.NewEmbedderWithDimensions(3), sink)
	require.NoError(t, err)

	_, err = searcher.FindSimilar(context.Background(), "query", 0)
	require.NoError(t, err)
	require.Len(t, sink.limits, 1)
	assert.Equal(t, DefaultMaxHits*overfetchFactor, sink.limits[0])
}

func TestFindSimilar_EmptyQuery(t *testing.T) {
	searcher, err := NewSearcher(mock.NewEmbedderWithDimensions(3), &stubSink{})
	require.NoError(t, err)

	_, err = searcher.FindSimilar(context.Background(), "   ", 10)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestFindSimilar_EmbedderErrorPropagates(t *testing.T) {
	embedder := mock.NewEmbedder()
	wantErr := errors.New("provider down")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, wantErr
	}

	searcher, err := NewSearcher(embedder, &stubSink{})
	require.NoError(t, err)

	_, err = searcher.FindSimilar(context.Background(), "query", 10)
	assert.ErrorIs(t, err, wantErr)
}

func TestFindSimilar_SinkErrorPropagates(t *testing.T) {
	wantErr := &index.SinkError{StatusCode: 500, Message: "unavailable"}
	searcher, err := NewSearcher(mock.NewEmbedderWithDimensions(3), &stubSink{err: wantErr})
	require.NoError(t, err)

	_, err = searcher.FindSimilar(context.Background(), "query", 10)
	assert.ErrorIs(t, err, wantErr)
}

func TestFindSimilarWithMonitor(t *testing.T) {
	sink := &stubSink{hits: []index.SearchResult{
		hit("2024-0001-0", "biometric data processing rules", 0.88),
		hit("2024-0001-1", "unrelated retention text", 0.70),
	}}

	searcher, err := NewSearcher(mock.NewEmbedderWithDimensions(3), sink)
	require.NoError(t, err)

	monitor := &testMonitor{}
	results, err := searcher.FindSimilarWithMonitor(context.Background(), "biometric data", 10, monitor)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, monitor.startCalled)
	assert.Len(t, monitor.queryVector, 3)
	assert.Equal(t, 2, monitor.vectorHits)
	assert.Equal(t, []string{"2024-0001-0"}, monitor.verbatim)
	assert.True(t, monitor.finishCalled)
}

// testMonitor is a simple test implementation of SearchMonitor
type testMonitor struct {
	startCalled  bool
	queryVector  []float32
	vectorHits   int
	verbatim     []string
	finishCalled bool
}

func (m *testMonitor) Start(query string) {
	m.startCalled = true
}

func (m *testMonitor) AfterQueryEmbedding(vector []float32) {
	m.queryVector = vector
}

func (m *testMonitor) AfterVectorSearch(hits []index.SearchResult) {
	m.vectorHits = len(hits)
}

func (m *testMonitor) VerbatimHit(hit index.SearchResult) {
	m.verbatim = append(m.verbatim, hit.Id)
}

func (m *testMonitor) Finish(results []Result) {
	m.finishCalled = true
}

func TestTokenizeAndFilter(t *testing.T) {
	words := tokenizeAndFilter("The processing of Biometric data, shall be lawful!")
	assert.Equal(t, []string{"processing", "biometric", "data", "lawful"}, words)
}

func TestContainsAllQueryWords(t *testing.T) {
	text := "Biometric data means personal data resulting from specific technical processing."

	assert.True(t, containsAllQueryWords(text, "biometric data"))
	assert.True(t, containsAllQueryWords(text, "the biometric data shall"), "stop words are ignored")
	assert.False(t, containsAllQueryWords(text, "biometric fingerprints"))
	assert.False(t, containsAllQueryWords(text, "the of and"), "stop-word-only queries never match")
}
