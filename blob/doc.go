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


// Package blob provides the durable key/value layer every pipeline stage
// reads its input from and writes its output to.
//
// Each stage owns one namespace (raw/, parsed/, chunks/, embedded/,
// indexed/), further partitioned by year and keyed by document id, so a key
// is always "{namespace}/{partition}/{id}". Stages never write into another
// stage's namespace. A separate manifest/ namespace holds checkpoint marks.
//
// # Constructor Return Type Pattern
//
// Backend packages follow the "return interface" pattern for their public
// constructors:
//
//	store, err := badger.OpenStore(path, false) // returns blob.Store interface
//
// This keeps callers decoupled from backend specifics and lets tests swap in
// the in-memory store (badger.NewMemoryStore) or a local double.
//
// # Atomicity
//
// Put is atomic at the per-key granularity on every backend: a reader sees
// either the previous payload or the complete new one, never a partial
// write. Stage resumability depends on this: a run cancelled mid-write
// must leave no key that Exists but holds a truncated payload.
//
// # Thread Safety
//
// All Store implementations must be safe for concurrent use. The pipeline
// never writes the same key from two workers, so no cross-key coordination
// is required of backends.
package blob
