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


// Package qdrant implements index.Sink as a minimal REST client to a Qdrant
// server. It assumes cosine distance and creates the collection if missing.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/lexit/core"
	"github.com/poiesic/lexit/index"
)

// Payload keys carried on every stored point.
const (
	payloadChunkID   = "chunk_id"
	payloadDocID     = "doc_id"
	payloadPartition = "partition"
	payloadTitle     = "title"
	payloadSeq       = "seq"
	payloadText      = "text"
)

// DefaultSearchLimit is used when a caller passes a non-positive limit.
const DefaultSearchLimit = 10

// Config configures the Qdrant REST client.
type Config struct {
	// URL is the server base URL, for example "http://localhost:6333".
	URL string

	// APIKey is sent in the api-key header when set.
	APIKey string

	// Collection is the collection name. Defaults to "lexit".
	Collection string

	// Timeout bounds each HTTP request. Defaults to 15 seconds.
	Timeout time.Duration
}

// Sink implements index.Sink against a Qdrant server.
type Sink struct {
	baseURL    string
	apiKey     string
	collection string
	dim        int
	client     *http.Client
	logger     *slog.Logger
}

var _ index.Sink = (*Sink)(nil)

// NewSink creates a Qdrant-backed sink.
//
// Returns index.Sink interface rather than concrete type.
func NewSink(cfg Config) (index.Sink, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant: URL is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = "lexit"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Sink{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
		logger:     slog.Default().With("component", "qdrant-sink"),
	}, nil
}

// EnsureCollection creates the collection if missing. Qdrant returns success
// when the collection already exists with the same schema.
func (s *Sink) EnsureCollection(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", index.ErrInvalidRecord)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	if err := s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.baseURL, s.collection), body, nil); err != nil {
		return err
	}
	s.dim = dimensions
	return nil
}

// Upsert writes records as points. Point ids are derived deterministically
// from chunk ids, so replaying a chunk overwrites its point.
func (s *Sink) Upsert(ctx context.Context, records []index.IndexRecord) error {
	if s.dim == 0 {
		return index.ErrCollectionNotReady
	}
	if len(records) == 0 {
		return nil
	}

	points := make([]map[string]any, len(records))
	for i := range records {
		rec := &records[i]
		if err := index.ValidateRecord(rec, s.dim); err != nil {
			return err
		}
		points[i] = map[string]any{
			"id":     pointID(rec.Id),
			"vector": rec.Vector,
			"payload": map[string]any{
				payloadChunkID:   rec.Id,
				payloadDocID:     string(rec.DocId),
				payloadPartition: string(rec.Partition),
				payloadTitle:     rec.Title,
				payloadSeq:       rec.Seq,
				payloadText:      rec.Text,
			},
		}
	}

	s.logger.Debug("upserting points", "count", len(points))
	body := map[string]any{"points": points}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", s.baseURL, s.collection), body, nil)
}

// Count returns the exact number of points in the collection.
func (s *Sink) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/count", s.baseURL, s.collection), map[string]any{"exact": true}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Search returns up to limit points nearest to the query vector.
func (s *Sink) Search(ctx context.Context, vector []float32, limit int) ([]index.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", s.baseURL, s.collection), req, &resp); err != nil {
		return nil, err
	}

	results := make([]index.SearchResult, 0, len(resp.Result))
	for _, hit := range resp.Result {
		result := index.SearchResult{Similarity: float32(hit.Score)}
		if v, ok := hit.Payload[payloadChunkID].(string); ok {
			result.Id = v
		}
		if v, ok := hit.Payload[payloadDocID].(string); ok {
			result.DocId = core.DocID(v)
		}
		if v, ok := hit.Payload[payloadPartition].(string); ok {
			result.Partition = core.Partition(v)
		}
		if v, ok := hit.Payload[payloadTitle].(string); ok {
			result.Title = v
		}
		if v, ok := hit.Payload[payloadText].(string); ok {
			result.Text = v
		}
		results = append(results, result)
	}
	return results, nil
}

// Close releases idle connections.
func (s *Sink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// pointID derives a stable UUID for a chunk id. Qdrant only accepts UUIDs
// or unsigned integers as point ids.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}

func (s *Sink) putJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPut, url, body, out)
}

func (s *Sink) postJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPost, url, body, out)
}

func (s *Sink) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &index.SinkError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
