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

package ai

import (
	"errors"
	"fmt"
)

// ErrProviderUnavailable indicates the embedding provider could not serve the
// request: unreachable host, authentication failure, or a malformed response.
// Callers treat this as fatal for the work that needed the embeddings, never
// as a reason to skip individual inputs.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// ErrAPIKeyMissing indicates no API key was configured for a provider that
// requires one.
var ErrAPIKeyMissing = fmt.Errorf("%w: API key not configured", ErrProviderUnavailable)
