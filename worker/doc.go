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

// Package worker drives the ingestion queue.
//
// A Worker polls the job store for the oldest pending job, claims it, runs
// it through the Pipeline (extract → chunk → embed → upsert), and records
// the terminal status with the job's result. The queue drains sequentially;
// concurrency lives inside the pipeline stages, not across jobs.
//
// Failure handling is two-tiered: per-file extraction problems skip the file
// and are reported in the job result, while embedding-provider and index
// failures fail the whole job without writing partial vectors.
package worker
