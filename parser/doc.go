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


// Package parser converts raw archive documents into normalized
// ParsedDocuments.
//
// Statute XML is the primary format: title, numbered sections with headings
// and paragraphs, and date/type metadata. Documents lacking the statute
// schema fall back to a tag-stripping path that yields best-effort metadata
// and a single unstructured section, so an odd entry degrades rather than
// failing its stage. PDF entries go through plain-text extraction.
//
// Parsing is pure: the same raw bytes always produce the same
// ParsedDocument apart from the ParsedAt timestamp.
package parser
