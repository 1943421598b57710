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


package blob

import "errors"

var (
	// ErrNotFound indicates that the requested key was not found.
	ErrNotFound = errors.New("key not found")

	// ErrStoreClosed indicates that the store is closed.
	ErrStoreClosed = errors.New("store is closed")

	// ErrInvalidKey indicates a malformed blob key.
	ErrInvalidKey = errors.New("invalid blob key")

	// ErrTruncatedData indicates that a payload did not decode completely.
	ErrTruncatedData = errors.New("truncated data")
)
