package search

import "github.com/poiesic/lexit/index"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterQueryEmbedding(vector []float32)
	AfterVectorSearch(hits []index.SearchResult)
	VerbatimHit(hit index.SearchResult)
	Finish(results []Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                           {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32)          {}
func (n *noopMonitor) AfterVectorSearch(_ []index.SearchResult) {}
func (n *noopMonitor) VerbatimHit(_ index.SearchResult)         {}
func (n *noopMonitor) Finish(_ []Result)                        {}
