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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested job was not found.
	ErrNotFound = errors.New("job not found")

	// ErrInvalidTransition indicates a status change that the job
	// lifecycle does not permit.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyClaimed indicates a claim on a job that is no longer pending.
	ErrAlreadyClaimed = errors.New("job already claimed")

	// ErrCollectionExists indicates an attempt to register a collection
	// name that is already registered.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a record could not be encoded or decoded.
	ErrSerializationFailed = errors.New("serialization failed")
)
