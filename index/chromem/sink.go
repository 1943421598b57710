// Package chromem implements index.Sink on chromem-go, an embedded pure-Go
// vector store. It needs no external service, which keeps small corpora and
// tests self-contained.
package chromem

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/poiesic/lexit/core"
	"github.com/poiesic/lexit/index"
)

// Metadata keys carried on every stored document.
const (
	metaDocID     = "doc_id"
	metaPartition = "partition"
	metaTitle     = "title"
	metaSeq       = "seq"
)

// DefaultSearchLimit is used when a caller passes a non-positive limit.
const DefaultSearchLimit = 10

// Sink implements index.Sink on a chromem database.
type Sink struct {
	db         *chromem.DB
	coll       *chromem.Collection
	collection string
	dim        int
	logger     *slog.Logger
	mu         sync.Mutex
}

var _ index.Sink = (*Sink)(nil)

// OpenSink opens a persistent chromem database at path. An empty path opens
// an in-memory database that is lost on Close.
//
// Returns index.Sink interface rather than concrete type.
func OpenSink(path, collection string) (index.Sink, error) {
	logger := slog.Default().With("component", "chromem-sink")

	var (
		db  *chromem.DB
		err error
	)
	if path == "" {
		logger.Debug("opening in-memory vector store")
		db = chromem.NewDB()
	} else {
		logger.Debug("opening persistent vector store", "path", path)
		db, err = chromem.NewPersistentDB(path, true)
		if err != nil {
			return nil, fmt.Errorf("open vector store: %w", err)
		}
	}

	return &Sink{
		db:         db,
		collection: collection,
		logger:     logger,
	}, nil
}

// EnsureCollection creates the collection if missing and pins the expected
// vector width. Must complete before concurrent upserts start.
func (s *Sink) EnsureCollection(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", index.ErrInvalidRecord)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	coll, err := s.db.GetOrCreateCollection(s.collection, map[string]string{
		"dimensions": strconv.Itoa(dimensions),
	}, nil)
	if err != nil {
		return fmt.Errorf("ensure collection %q: %w", s.collection, err)
	}
	s.mu.Lock()
	s.coll = coll
	s.dim = dimensions
	s.mu.Unlock()
	return nil
}

// attached returns the collection, attaching a persisted one on first read.
// Upserts still require EnsureCollection, which pins the vector width.
func (s *Sink) attached() (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coll != nil {
		return s.coll, nil
	}
	coll := s.db.GetCollection(s.collection, nil)
	if coll == nil {
		return nil, index.ErrCollectionNotReady
	}
	s.coll = coll
	return coll, nil
}

// Upsert writes records into the collection. chromem replaces documents by
// ID, so replays overwrite.
func (s *Sink) Upsert(ctx context.Context, records []index.IndexRecord) error {
	s.mu.Lock()
	coll, dim := s.coll, s.dim
	s.mu.Unlock()
	// A lazily attached collection has no pinned width; writes need
	// EnsureCollection first.
	if coll == nil || dim == 0 {
		return index.ErrCollectionNotReady
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i := range records {
		rec := &records[i]
		if err := index.ValidateRecord(rec, dim); err != nil {
			return err
		}
		docs[i] = chromem.Document{
			ID:        rec.Id,
			Content:   rec.Text,
			Embedding: rec.Vector,
			Metadata: map[string]string{
				metaDocID:     string(rec.DocId),
				metaPartition: string(rec.Partition),
				metaTitle:     rec.Title,
				metaSeq:       strconv.Itoa(rec.Seq),
			},
		}
	}

	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("upsert %d records: %w", len(records), err)
	}
	return nil
}

// Count returns the number of records in the collection.
func (s *Sink) Count(ctx context.Context) (int, error) {
	coll, err := s.attached()
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return coll.Count(), nil
}

// Search returns up to limit records nearest to the query vector. chromem
// rejects limits above the collection size, so the limit is clamped.
func (s *Sink) Search(ctx context.Context, vector []float32, limit int) ([]index.SearchResult, error) {
	coll, err := s.attached()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	count := coll.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	hits, err := coll.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	results := make([]index.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, index.SearchResult{
			Id:         hit.ID,
			DocId:      docIDFromMeta(hit.Metadata),
			Partition:  partitionFromMeta(hit.Metadata),
			Title:      hit.Metadata[metaTitle],
			Text:       hit.Content,
			Similarity: hit.Similarity,
		})
	}
	return results, nil
}

// Close releases the sink. Persistent databases write through on every
// upsert, so there is nothing to flush.
func (s *Sink) Close() error {
	s.mu.Lock()
	s.coll = nil
	s.mu.Unlock()
	return nil
}

func docIDFromMeta(meta map[string]string) core.DocID {
	return core.DocID(meta[metaDocID])
}

func partitionFromMeta(meta map[string]string) core.Partition {
	return core.Partition(meta[metaPartition])
}
