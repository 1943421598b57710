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


// Package ai provides abstractions for the embedding service used in Lexit.
//
// This package defines the Embedder interface the pipeline and search layer
// depend on, plus the shared configuration, error classification, and rate
// limiting used by implementations. It follows the dependency inversion
// principle: business logic depends on the abstraction, never on a concrete
// client.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation for OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external services
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewEmbedder) return INTERFACE types to enforce
// abstraction and prevent accidental coupling to concrete implementations.
//
//	embedder, err := openai.NewEmbedder(config)  // returns ai.Embedder
//
// Test utility constructors (mock.NewEmbedder) return CONCRETE types so tests
// can inject behavior via function fields and assert on call counts.
//
//	mockEmbed := mock.NewEmbedder()   // returns *mock.Embedder
//	mockEmbed.EmbedTextsFunc = ...    // needs concrete type
//	count := mockEmbed.CallCount()    // test assertion
//
// # Error Classification
//
// Embedding calls fail in two families: transient service conditions (rate
// limiting, server errors, network timeouts) and permanent ones (bad request,
// cancelled context). IsRetryable distinguishes them so callers retry only
// what can succeed on a later attempt.
//
// # Rate Limiting
//
// Hosted embedding APIs meter usage in tokens per minute. TokenLimiter
// enforces that budget locally, so batch runs wait for quota instead of
// burning retry attempts on 429 responses.
package ai
