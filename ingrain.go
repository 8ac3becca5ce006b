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

// Package ingrain wires the ingestion system together: the durable job
// queue, the vector index, the embedding provider, and the processing
// pipeline.
package ingrain

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/poiesic/ingrain/ai"
	"github.com/poiesic/ingrain/ai/openai"
	"github.com/poiesic/ingrain/api"
	"github.com/poiesic/ingrain/config"
	"github.com/poiesic/ingrain/extract"
	"github.com/poiesic/ingrain/storage"
	badgerstore "github.com/poiesic/ingrain/storage/badger"
	"github.com/poiesic/ingrain/vector"
	"github.com/poiesic/ingrain/vector/pgvector"
	"github.com/poiesic/ingrain/worker"
)

// System holds the assembled components for one process.
type System struct {
	cfg *config.Config

	backend     *badgerstore.Backend
	jobs        storage.JobStore
	collections storage.CollectionStore
	index       vector.Index
	embedder    ai.Embedder
	logger      *slog.Logger
}

// Open assembles a System from configuration. When cfg.QueueURL is set the
// job store is the remote HTTP queue; otherwise the embedded badger store
// is opened at cfg.DBPath. The vector index backend follows cfg.Index.
func Open(ctx context.Context, cfg *config.Config) (*System, error) {
	s := &System{cfg: cfg, logger: slog.Default()}

	if cfg.QueueURL != "" {
		client, err := api.NewClient(cfg.QueueURL)
		if err != nil {
			return nil, err
		}
		s.jobs = client
		s.collections = client
	}

	// The badger backend serves the embedded queue, the collection
	// registry, and the local vector index. It is opened when any of
	// them is needed.
	needBackend := cfg.QueueURL == "" || cfg.Index.Backend == "badger"
	if needBackend {
		backend, err := badgerstore.OpenBackend(cfg.DBPath, false)
		if err != nil {
			return nil, err
		}
		s.backend = backend

		if cfg.QueueURL == "" {
			store, err := badgerstore.NewJobStore(backend)
			if err != nil {
				backend.Close()
				return nil, err
			}
			s.jobs = store
			s.collections = store
		}
	}

	switch cfg.Index.Backend {
	case "badger":
		s.index = badgerstore.NewVectorIndex(s.backend)
	case "pgvector":
		index, err := pgvector.NewIndex(ctx, cfg.Index.PgURL, cfg.Embedding.Dimension)
		if err != nil {
			s.closePartial()
			return nil, err
		}
		s.index = index
	}

	return s, nil
}

// Jobs returns the job store, local or remote.
func (s *System) Jobs() storage.JobStore { return s.jobs }

// Collections returns the collection registry.
func (s *System) Collections() storage.CollectionStore { return s.collections }

// Index returns the vector index.
func (s *System) Index() vector.Index { return s.index }

// Embedder lazily constructs the embedding client from configuration.
func (s *System) Embedder() (ai.Embedder, error) {
	if s.embedder != nil {
		return s.embedder, nil
	}
	embedder, err := openai.NewEmbedder(ai.NewConfig(
		ai.WithHost(s.cfg.Embedding.Host),
		ai.WithModel(s.cfg.Embedding.Model),
		ai.WithAPIKey(s.cfg.Embedding.APIKey),
		ai.WithDimension(s.cfg.Embedding.Dimension),
	))
	if err != nil {
		return nil, err
	}
	s.embedder = embedder
	return embedder, nil
}

// NewWorker assembles the processing pipeline and the queue worker.
func (s *System) NewWorker() (*worker.Worker, error) {
	embedder, err := s.Embedder()
	if err != nil {
		return nil, err
	}

	upserter, err := vector.NewUpserter(s.index, vector.WithBatchSize(s.cfg.BatchSize))
	if err != nil {
		return nil, err
	}

	extractor := extract.NewExtractor(extract.Config{
		ArtifactDir: s.cfg.ArtifactDir,
	}, nil)

	pipeline, err := worker.NewPipeline(extractor, embedder, upserter, s.cfg.StorageDir,
		worker.WithChunkSize(s.cfg.ChunkSize),
		worker.WithTimeouts(worker.Timeouts{
			Extract: s.cfg.Timeouts.ExtractDuration(),
			Embed:   s.cfg.Timeouts.EmbedDuration(),
			Upsert:  s.cfg.Timeouts.UpsertDuration(),
		}),
	)
	if err != nil {
		return nil, err
	}

	return worker.New(s.jobs, pipeline,
		worker.WithPollInterval(s.cfg.PollInterval()),
		worker.WithRetryPolicy(worker.RetryPolicy{
			MaxAttempts: s.cfg.Retry.MaxAttempts,
			BaseDelay:   s.cfg.Retry.BaseDelay(),
		}),
	)
}

// Router returns the HTTP API handler over this system's stores.
func (s *System) Router() http.Handler {
	return api.NewRouter(s.jobs, s.collections)
}

// Close releases everything in reverse dependency order.
func (s *System) Close() error {
	var firstErr error

	if s.index != nil {
		if err := s.index.Close(); err != nil {
			s.logger.Error("error closing vector index", "err", err)
			firstErr = err
		}
	}
	if s.jobs != nil {
		if err := s.jobs.Close(); err != nil {
			s.logger.Error("error closing job store", "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("error closing backend storage", "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *System) closePartial() {
	if s.backend != nil {
		_ = s.backend.Close()
	}
}
