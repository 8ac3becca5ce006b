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


package core

import "errors"

// Domain validation errors
var (
	// ErrNoFiles indicates a job submission without any files.
	ErrNoFiles = errors.New("job must reference at least one file")

	// ErrEmptyCollection indicates a job submission without a target collection.
	ErrEmptyCollection = errors.New("collection name cannot be empty")

	// ErrEmptyFilename indicates a job submission containing a blank file entry.
	ErrEmptyFilename = errors.New("file name cannot be empty")

	// ErrInvalidStatus indicates an unknown job status value.
	ErrInvalidStatus = errors.New("invalid job status")
)
