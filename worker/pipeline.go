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

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/ingrain/ai"
	"github.com/poiesic/ingrain/chunk"
	"github.com/poiesic/ingrain/core"
	"github.com/poiesic/ingrain/extract"
	"github.com/poiesic/ingrain/vector"
)

// Extractor is the slice of the extraction surface the pipeline needs.
type Extractor interface {
	Extract(ctx context.Context, path string) (extract.Result, error)
}

// Timeouts bound the external calls made while processing one file.
// Zero values fall back to the defaults.
type Timeouts struct {
	Extract time.Duration // default 2m
	Embed   time.Duration // default 1m
	Upsert  time.Duration // default 1m
}

func (t *Timeouts) applyDefaults() {
	if t.Extract <= 0 {
		t.Extract = 2 * time.Minute
	}
	if t.Embed <= 0 {
		t.Embed = time.Minute
	}
	if t.Upsert <= 0 {
		t.Upsert = time.Minute
	}
}

// Pipeline processes one job: extract each file, chunk the text, embed the
// chunks, and upsert the vectors.
//
// Per-file failures (unsupported format, unreadable file, empty extraction)
// skip the file and continue. Provider failures are fatal for the whole job,
// and nothing is upserted until every file has embedded cleanly, so a failed
// job leaves no partial vectors behind.
type Pipeline struct {
	extractor Extractor
	embedder  ai.Embedder
	upserter  *vector.Upserter

	storageDir string
	chunkSize  int
	timeouts   Timeouts
	logger     *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithChunkSize overrides the chunk window width.
func WithChunkSize(size int) PipelineOption {
	return func(p *Pipeline) {
		p.chunkSize = size
	}
}

// WithTimeouts overrides the per-call timeout bounds.
func WithTimeouts(t Timeouts) PipelineOption {
	return func(p *Pipeline) {
		p.timeouts = t
	}
}

// WithPipelineLogger sets a custom logger.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a processing pipeline. storageDir is the root under
// which job filenames are resolved.
func NewPipeline(extractor Extractor, embedder ai.Embedder, upserter *vector.Upserter, storageDir string, opts ...PipelineOption) (*Pipeline, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if upserter == nil {
		return nil, ErrUpserterRequired
	}

	p := &Pipeline{
		extractor:  extractor,
		embedder:   embedder,
		upserter:   upserter,
		storageDir: storageDir,
		chunkSize:  chunk.DefaultSize,
		logger:     slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.timeouts.applyDefaults()
	return p, nil
}

// Process runs the full extract → chunk → embed → upsert sequence for one
// job. A nil error means the job completed; the result lists what was
// processed and what was skipped. A non-nil error fails the whole job.
func (p *Pipeline) Process(ctx context.Context, job *core.Job) (*core.JobResult, error) {
	result := &core.JobResult{}
	var records []vector.Record

	for _, filename := range job.Files {
		recs, err := p.processFile(ctx, job.Collection, filename)
		if err != nil {
			if errors.Is(err, errSkipFile) {
				p.logger.Warn("skipping file", "job", job.ID, "file", filename, "reason", err)
				result.SkippedFiles = append(result.SkippedFiles, filename)
				continue
			}
			return nil, fmt.Errorf("file %q: %w", filename, err)
		}
		if len(recs) == 0 {
			p.logger.Info("file produced no text", "job", job.ID, "file", filename)
			result.SkippedFiles = append(result.SkippedFiles, filename)
			continue
		}
		records = append(records, recs...)
		result.ProcessedFiles = append(result.ProcessedFiles, filename)
	}

	// All files have embedded before anything is written to the index.
	if len(records) > 0 {
		upsertCtx, cancel := context.WithTimeout(ctx, p.timeouts.Upsert)
		err := p.upserter.Upsert(upsertCtx, records)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("upsert: %w", err)
		}
	}

	result.ChunkCount = len(records)
	p.logger.Info("job processed",
		"job", job.ID,
		"collection", job.Collection,
		"processed", len(result.ProcessedFiles),
		"skipped", len(result.SkippedFiles),
		"chunks", result.ChunkCount)
	return result, nil
}

// errSkipFile marks per-file failures that skip the file without failing
// the job. Extraction failures are skippable except timeouts and
// cancellation; embedding and index failures are not.
var errSkipFile = errors.New("file skipped")

// processFile extracts, chunks, and embeds a single file, returning one
// record per chunk.
func (p *Pipeline) processFile(ctx context.Context, collection, filename string) ([]vector.Record, error) {
	path := filepath.Join(p.storageDir, filename)

	extractCtx, cancel := context.WithTimeout(ctx, p.timeouts.Extract)
	res, err := p.extractor.Extract(extractCtx, path)
	cancel()
	if err != nil {
		// A timed-out or cancelled extraction is not a bad file; it fails
		// the job rather than silently skipping the rest of it.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("extract: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", errSkipFile, err)
	}
	if strings.TrimSpace(res.Text) == "" {
		return nil, nil
	}

	chunks := chunk.Split(res.Text, p.chunkSize)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embedCtx, cancel := context.WithTimeout(ctx, p.timeouts.Embed)
	vectors, err := p.embedder.EmbedTexts(embedCtx, texts)
	cancel()
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
			ai.ErrProviderUnavailable, len(chunks), len(vectors))
	}

	records := make([]vector.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vector.Record{
			ID:     core.ChunkID(collection, filename, c.Index),
			Vector: vectors[i],
			Metadata: vector.Metadata{
				Text:       c.Text,
				Source:     filename,
				Collection: collection,
				Page:       c.Index,
			},
		}
	}
	return records, nil
}

