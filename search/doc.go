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


// Package search queries the chunk index built by the ingestion pipeline.
//
// The Searcher type embeds the query, retrieves the nearest chunks from the
// index sink, and re-ranks them with a verbatim keyword boost: a chunk
// containing every query word (after stop-word filtering) outranks a purely
// semantic neighbor.
//
// Scores combine vector similarity with the verbatim boost, so they are
// comparable within one query's results but not across queries.
package search
