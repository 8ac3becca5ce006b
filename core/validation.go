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

import (
	"fmt"
	"strings"
)

// ValidateSubmission validates the inputs of a job submission before a job
// is created.
//
// Validation rules:
//   - Collection must not be empty or whitespace
//   - Files must contain at least one entry
//   - No file entry may be blank
func ValidateSubmission(collection string, files []string) error {
	if strings.TrimSpace(collection) == "" {
		return ErrEmptyCollection
	}

	if len(files) == 0 {
		return ErrNoFiles
	}

	for i, f := range files {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w: entry %d", ErrEmptyFilename, i)
		}
	}

	return nil
}

// ValidateStatus validates that a status string names a known job status.
func ValidateStatus(status JobStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return nil
}
