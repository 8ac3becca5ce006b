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

// Package config loads the service configuration from a YAML file with
// environment variable overrides for deployment-specific values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	// StorageDir is the root under which job filenames are resolved.
	StorageDir string `yaml:"storage_dir"`

	// ArtifactDir receives rendered PDF page images.
	ArtifactDir string `yaml:"artifact_dir"`

	// DBPath is the badger database directory.
	DBPath string `yaml:"db_path"`

	// ListenAddr is the HTTP API bind address.
	ListenAddr string `yaml:"listen_addr"`

	// QueueURL, when set, points the worker at a remote queue server
	// instead of the embedded store.
	QueueURL string `yaml:"queue_url"`

	// PollIntervalSeconds is the worker idle delay between empty polls.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`

	// ChunkSize is the chunk window width in characters.
	ChunkSize int `yaml:"chunk_size"`

	// BatchSize is the vector upsert batch size.
	BatchSize int `yaml:"batch_size"`

	// StaleClaimSeconds is the age after which a processing job is
	// considered abandoned by the requeue sweep.
	StaleClaimSeconds int `yaml:"stale_claim_seconds"`

	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	Retry     RetryConfig     `yaml:"retry"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Host      string `yaml:"host"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	// APIKey is normally supplied via the OPENAI_API_KEY environment
	// variable rather than the file.
	APIKey string `yaml:"api_key"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	// Backend is "badger" (embedded) or "pgvector" (remote Postgres).
	Backend string `yaml:"backend"`

	// PgURL is the Postgres connection URL for the pgvector backend.
	// Overridden by DATABASE_URL when set.
	PgURL string `yaml:"pg_url"`
}

// TimeoutConfig bounds the pipeline's external calls, in seconds.
type TimeoutConfig struct {
	ExtractSeconds int `yaml:"extract_seconds"`
	EmbedSeconds   int `yaml:"embed_seconds"`
	UpsertSeconds  int `yaml:"upsert_seconds"`
}

// RetryConfig controls job processing retries.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMS int `yaml:"base_delay_ms"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		StorageDir:          "./uploads",
		ArtifactDir:         "./artifacts",
		DBPath:              "./data/ingrain",
		ListenAddr:          ":8080",
		PollIntervalSeconds: 5,
		ChunkSize:           800,
		BatchSize:           50,
		StaleClaimSeconds:   900,
		Embedding: EmbeddingConfig{
			Host:      "https://api.openai.com/v1",
			Model:     "text-embedding-3-small",
			Dimension: 1536,
		},
		Index: IndexConfig{
			Backend: "badger",
		},
		Timeouts: TimeoutConfig{
			ExtractSeconds: 120,
			EmbedSeconds:   60,
			UpsertSeconds:  60,
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			BaseDelayMS: 1000,
		},
	}
}

// Load reads the YAML file at path, falling back to defaults for anything
// unset. A missing file is not an error; environment overrides still apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults plus environment only.
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_HOST"); v != "" {
		c.Embedding.Host = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Index.PgURL = v
	}
	if v := os.Getenv("INGRAIN_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("INGRAIN_QUEUE_URL"); v != "" {
		c.QueueURL = v
	}
}

func (c *Config) validate() error {
	switch c.Index.Backend {
	case "badger", "pgvector":
	default:
		return fmt.Errorf("unknown index backend %q", c.Index.Backend)
	}
	if c.Index.Backend == "pgvector" && c.Index.PgURL == "" {
		return fmt.Errorf("pgvector backend requires pg_url or DATABASE_URL")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive")
	}
	return nil
}

// ExtractDuration returns the extraction timeout as a duration.
func (t TimeoutConfig) ExtractDuration() time.Duration {
	return time.Duration(t.ExtractSeconds) * time.Second
}

// EmbedDuration returns the embedding timeout as a duration.
func (t TimeoutConfig) EmbedDuration() time.Duration {
	return time.Duration(t.EmbedSeconds) * time.Second
}

// UpsertDuration returns the upsert timeout as a duration.
func (t TimeoutConfig) UpsertDuration() time.Duration {
	return time.Duration(t.UpsertSeconds) * time.Second
}

// BaseDelay returns the retry base delay as a duration.
func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMS) * time.Millisecond
}

// PollInterval returns the worker idle delay as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// StaleClaimAge returns the stale-claim threshold as a duration.
func (c *Config) StaleClaimAge() time.Duration {
	return time.Duration(c.StaleClaimSeconds) * time.Second
}
