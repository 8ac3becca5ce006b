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


// Package storage defines the abstraction layer over the durable job queue.
//
// The JobStore interface is the only way job state is read or written;
// nothing else in the system touches the store directly. Its contract
// covers the full job lifecycle:
//
//	pending → processing → completed
//	                     → failed
//
// Transitions are forward-only, re-applying an already-taken transition is
// a no-op, and Claim (pending → processing) is a compare-and-swap so that
// running several workers later needs no interface change.
//
// # Implementations
//
//   - storage/badger: durable BadgerDB-backed store (the default)
//   - api.Client: the same contract spoken over HTTP to a queue server
//
// # Durability
//
// Every mutating operation must be committed to disk before it returns;
// a crash immediately after a successful call must not lose the update.
// Writes are serialized through the backend's transactions, so a crash
// mid-write never leaves a half-written record either.
//
// # Usage
//
//	store, err := badger.NewJobStore(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// In tests, open an in-memory store:
//
//	store, backend, err := badger.NewMemoryJobStore()
package storage
