package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/lexit/ai"
	"github.com/poiesic/lexit/index"
)

const (
	// DefaultMaxHits is the result count when the caller asks for none.
	DefaultMaxHits = 10

	// verbatimBoost is added to a hit containing every query word.
	verbatimBoost = 0.3

	// overfetchFactor widens the index query so the verbatim boost can
	// promote hits that pure similarity would have cut off.
	overfetchFactor = 3
)

// Result is one ranked search hit.
type Result struct {
	Hit   index.SearchResult
	Score float32
}

// Searcher runs semantic search with verbatim re-ranking over the chunk index.
type Searcher struct {
	embedder ai.Embedder
	sink     index.Sink
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher over an embedder and an index sink.
func NewSearcher(embedder ai.Embedder, sink index.Sink, opts ...Option) (*Searcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if sink == nil {
		return nil, ErrSinkRequired
	}

	s := &Searcher{
		embedder: embedder,
		sink:     sink,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for chunks similar to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]Result, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor searches for chunks similar to the query with
// monitoring. The monitor receives callbacks at each stage of the search.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]Result, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if maxHits < 1 {
		maxHits = DefaultMaxHits
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(embedding)

	// Overfetch so re-ranking happens before the cut, not after.
	hits, err := s.sink.Search(ctx, embedding, maxHits*overfetchFactor)
	if err != nil {
		s.logger.Error("error querying the index", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(hits)

	// Score: similarity, plus the boost when every query word is present.
	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		score := hit.Similarity
		if containsAllQueryWords(hit.Text, query) {
			score += verbatimBoost
			monitor.VerbatimHit(hit)
		}
		results = append(results, Result{Hit: hit, Score: score})
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}
