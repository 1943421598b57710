// Package index defines the vector index sink the pipeline writes into and
// the search layer reads from.
//
// A Sink stores one record per chunk, keyed by the chunk id, so replaying an
// upsert overwrites instead of duplicating. Implementations live in
// sub-packages:
//
//   - index/chromem: embedded pure-Go vector store, no external service
//   - index/qdrant: REST client for a Qdrant server
//
// Constructors return the Sink interface to keep callers decoupled from the
// backend, mirroring the blob store packages.
package index
