// Copyright 2026 Poiesic Systems
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


package vector

import "errors"

var (
	// ErrIndexUnavailable indicates the vector index cannot be reached.
	// This is job-fatal for the ingestion pipeline.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrIndexRequired is returned when an Upserter is built without an index.
	ErrIndexRequired = errors.New("vector index required")

	// ErrDimensionMismatch indicates a record whose vector length differs
	// from the rest of the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
