package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 5, cfg.PollIntervalSeconds)
	assert.Equal(t, "badger", cfg.Index.Backend)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage_dir: /srv/uploads
chunk_size: 400
poll_interval_seconds: 2
embedding:
  host: http://localhost:11434
  model: embeddinggemma
  dimension: 384
timeouts:
  extract_seconds: 30
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/uploads", cfg.StorageDir)
	assert.Equal(t, 400, cfg.ChunkSize)
	assert.Equal(t, 2, cfg.PollIntervalSeconds)
	assert.Equal(t, "embeddinggemma", cfg.Embedding.Model)
	assert.Equal(t, 384, cfg.Embedding.Dimension)
	assert.Equal(t, 30, cfg.Timeouts.ExtractSeconds)
	// Untouched fields keep their defaults.
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 60, cfg.Timeouts.EmbedSeconds)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("INGRAIN_LISTEN_ADDR", ":9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sk-from-env", cfg.Embedding.APIKey)
	assert.Equal(t, ":9090", cfg.ListenAddr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	_, err := Load(write("backend.yaml", "index:\n  backend: elastic\n"))
	assert.ErrorContains(t, err, "unknown index backend")

	_, err = Load(write("pg.yaml", "index:\n  backend: pgvector\n"))
	assert.ErrorContains(t, err, "pg_url")

	_, err = Load(write("chunk.yaml", "chunk_size: -1\n"))
	assert.ErrorContains(t, err, "chunk_size")
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "5s", cfg.PollInterval().String())
	assert.Equal(t, "15m0s", cfg.StaleClaimAge().String())
}
