package vector

import (
	"context"

	"github.com/poiesic/ingrain/core"
)

// Index is the narrow interface this system uses to talk to a vector
// index. Writes go through Upsert only; the index itself (its storage,
// its ANN structures) is an external capability.
// Implementations must be thread-safe.
type Index interface {
	// Upsert writes records into the index. Records are keyed by their
	// deterministic ID: writing the same ID twice overwrites, never
	// duplicates. The caller is responsible for batching; see Upserter.
	Upsert(ctx context.Context, records []Record) error

	// Query returns the topK records most similar to the given vector,
	// highest score first, restricted by the filter.
	Query(ctx context.Context, vec []float32, topK int, filter Filter) ([]Match, error)

	// Close releases resources held by the index client.
	Close() error
}

// Record is one (id, vector, metadata) entry destined for the index.
type Record struct {
	ID       core.ID
	Vector   []float32
	Metadata Metadata
}

// Metadata is the payload stored alongside each vector, in the shape the
// query side expects.
type Metadata struct {
	// Text is the chunk content itself.
	Text string `json:"text"`
	// Source is the originating filename.
	Source string `json:"source"`
	// Collection is the logical namespace the vector belongs to.
	Collection string `json:"db"`
	// Page is the chunk's sequence index within its document. It is an
	// approximation, not a true page number: chunk boundaries do not
	// align with page boundaries, so downstream display should not treat
	// it as authoritative.
	Page int `json:"page"`
}

// Filter restricts a query to a subset of the index.
type Filter struct {
	// Collection, when non-empty, limits matches to one collection.
	Collection string
}

// Match is a single query result.
type Match struct {
	ID       core.ID
	Score    float32
	Metadata Metadata
}
