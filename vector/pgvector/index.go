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

// Package pgvector provides a vector.Index backed by PostgreSQL with the
// pgvector extension. It is the remote alternative to the embedded badger
// index for deployments that already run Postgres.
package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/poiesic/ingrain/core"
	"github.com/poiesic/ingrain/vector"
)

// Index implements vector.Index on a Postgres table with a pgvector column.
type Index struct {
	db     *sql.DB
	dim    int
	logger *slog.Logger
}

var _ vector.Index = (*Index)(nil)

// NewIndex opens a connection pool against url and bootstraps the schema.
// dim is the embedding width the table is created with.
func NewIndex(ctx context.Context, url string, dim int) (*Index, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty database URL", vector.ErrIndexUnavailable)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive", vector.ErrDimensionMismatch)
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrIndexUnavailable, err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %v", vector.ErrIndexUnavailable, err)
	}

	idx := &Index{
		db:     db,
		dim:    dim,
		logger: slog.Default().With("component", "pgvector-index"),
	}
	if err := idx.bootstrap(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: bootstrap: %v", vector.ErrIndexUnavailable, err)
	}
	return idx, nil
}

func (x *Index) bootstrap(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id         TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			source     TEXT NOT NULL,
			page       INT NOT NULL,
			text       TEXT NOT NULL,
			embedding  vector(%d) NOT NULL
		)`, x.dim),
		`CREATE INDEX IF NOT EXISTS chunks_collection_idx ON chunks (collection)`,
	}
	for _, q := range stmts {
		if _, err := x.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Upsert writes records keyed by their deterministic chunk ID. Re-ingesting
// the same chunk replaces the existing row.
func (x *Index) Upsert(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", vector.ErrIndexUnavailable, err)
	}

	const q = `
		INSERT INTO chunks (id, collection, source, page, text, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			collection = EXCLUDED.collection,
			source     = EXCLUDED.source,
			page       = EXCLUDED.page,
			text       = EXCLUDED.text,
			embedding  = EXCLUDED.embedding
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %v", vector.ErrIndexUnavailable, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if x.dim > 0 && len(rec.Vector) != x.dim {
			_ = tx.Rollback()
			return fmt.Errorf("%w: expected %d, got %d", vector.ErrDimensionMismatch, x.dim, len(rec.Vector))
		}
		vec := pgv.NewVector(rec.Vector)
		if _, err := stmt.ExecContext(ctx,
			rec.ID.String(), rec.Metadata.Collection, rec.Metadata.Source, rec.Metadata.Page, rec.Metadata.Text, vec,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: %v", vector.ErrIndexUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", vector.ErrIndexUnavailable, err)
	}
	x.logger.Debug("upserted records", "count", len(records))
	return nil
}

// Query returns the topK nearest records by cosine distance, optionally
// restricted to one collection.
func (x *Index) Query(ctx context.Context, vec []float32, topK int, filter vector.Filter) ([]vector.Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	const base = `
		SELECT id, collection, source, page, text, 1 - (embedding <=> $1) AS score
		FROM chunks
	`
	var (
		rows *sql.Rows
		err  error
	)
	q := pgv.NewVector(vec)
	if filter.Collection != "" {
		rows, err = x.db.QueryContext(ctx,
			base+` WHERE collection = $2 ORDER BY embedding <=> $1 LIMIT $3`, q, filter.Collection, topK)
	} else {
		rows, err = x.db.QueryContext(ctx,
			base+` ORDER BY embedding <=> $1 LIMIT $2`, q, topK)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	var matches []vector.Match
	for rows.Next() {
		var (
			m     vector.Match
			idHex string
		)
		if err := rows.Scan(&idHex, &m.Metadata.Collection, &m.Metadata.Source, &m.Metadata.Page, &m.Metadata.Text, &m.Score); err != nil {
			return nil, fmt.Errorf("%w: %v", vector.ErrIndexUnavailable, err)
		}
		var raw uint64
		if _, err := fmt.Sscanf(idHex, "%016x", &raw); err == nil {
			m.ID = core.ID(raw)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrIndexUnavailable, err)
	}
	return matches, nil
}

// Close releases the connection pool.
func (x *Index) Close() error {
	if x.db != nil {
		return x.db.Close()
	}
	return nil
}
