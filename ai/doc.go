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

// Package ai defines the embedding provider contract and its configuration.
//
// The package itself contains no provider logic, only the Embedder interface,
// the Config type, and the error taxonomy shared by implementations:
//
//   - ai/openai: OpenAI-compatible HTTP APIs (OpenAI, Ollama, LocalAI, vLLM)
//   - ai/mock: deterministic in-memory embedder for tests
//
// All provider failures surface as errors wrapping ErrProviderUnavailable so
// callers can distinguish "the provider is down" from per-input problems.
package ai
