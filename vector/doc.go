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


// Package vector defines the narrow interface to the vector index and the
// batching layer in front of it.
//
// The ingestion side only ever calls Upsert with deterministic record IDs,
// which makes re-ingestion idempotent: the same file chunked again produces
// the same IDs, and the index overwrites instead of accumulating
// duplicates. The query side filters by collection and gets ranked matches
// with the metadata shape the retrieval layer expects: text, source, db,
// page.
//
// # Implementations
//
//   - storage/badger: a local index kept alongside the job store
//   - vector/pgvector: a Postgres index using the pgvector extension
//
// Both are interchangeable behind the Index interface.
package vector
