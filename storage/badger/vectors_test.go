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

package badger

import (
	"context"
	"testing"

	"github.com/poiesic/ingrain/core"
	"github.com/poiesic/ingrain/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *VectorIndex {
	t.Helper()
	_, index, backend, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return index
}

func record(collection, filename string, idx int, vec []float32, text string) vector.Record {
	return vector.Record{
		ID:     core.ChunkID(collection, filename, idx),
		Vector: vec,
		Metadata: vector.Metadata{
			Text:       text,
			Source:     filename,
			Collection: collection,
			Page:       idx,
		},
	}
}

func TestVectorUpsertAndQuery(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	err := index.Upsert(ctx, []vector.Record{
		record("Docs", "a.txt", 0, []float32{1, 0, 0}, "alpha"),
		record("Docs", "a.txt", 1, []float32{0, 1, 0}, "beta"),
		record("Docs", "b.txt", 0, []float32{0.9, 0.1, 0}, "gamma"),
	})
	require.NoError(t, err)

	matches, err := index.Query(ctx, []float32{1, 0, 0}, 2, vector.Filter{Collection: "Docs"})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "alpha", matches[0].Metadata.Text)
	assert.Equal(t, "gamma", matches[1].Metadata.Text)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestVectorUpsertIsIdempotent(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	rec := record("Docs", "a.txt", 0, []float32{1, 0, 0}, "first")
	require.NoError(t, index.Upsert(ctx, []vector.Record{rec}))

	// Same (db, filename, index) replaces the record, never duplicates it.
	rec.Metadata.Text = "second"
	require.NoError(t, index.Upsert(ctx, []vector.Record{rec}))

	matches, err := index.Query(ctx, []float32{1, 0, 0}, 10, vector.Filter{Collection: "Docs"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "second", matches[0].Metadata.Text)
}

func TestVectorQueryCollectionFilter(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []vector.Record{
		record("Docs", "a.txt", 0, []float32{1, 0, 0}, "docs"),
	}))
	require.NoError(t, index.Upsert(ctx, []vector.Record{
		record("Notes", "n.txt", 0, []float32{1, 0, 0}, "notes"),
	}))

	matches, err := index.Query(ctx, []float32{1, 0, 0}, 10, vector.Filter{Collection: "Notes"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "notes", matches[0].Metadata.Text)

	// No filter scans everything.
	matches, err = index.Query(ctx, []float32{1, 0, 0}, 10, vector.Filter{})
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestVectorQueryEmptyIndex(t *testing.T) {
	index := newTestIndex(t)

	matches, err := index.Query(context.Background(), []float32{1, 0, 0}, 5, vector.Filter{Collection: "Docs"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}
