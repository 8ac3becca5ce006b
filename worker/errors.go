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

package worker

import "errors"

// ErrInvalidMaxAttempts indicates a retry policy with a non-positive
// attempt count.
var ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")

// ErrStoreRequired indicates the worker was constructed without a job store.
var ErrStoreRequired = errors.New("job store is required")

// ErrPipelineRequired indicates the worker was constructed without a
// processing pipeline.
var ErrPipelineRequired = errors.New("pipeline is required")

// ErrEmbedderRequired indicates the pipeline was constructed without an
// embedding client.
var ErrEmbedderRequired = errors.New("embedder is required")

// ErrUpserterRequired indicates the pipeline was constructed without a
// vector upserter.
var ErrUpserterRequired = errors.New("upserter is required")

// ErrExtractorRequired indicates the pipeline was constructed without a
// document extractor.
var ErrExtractorRequired = errors.New("extractor is required")
