// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PostgresSchema creates the blob table used by Postgres.
const PostgresSchema = `
	CREATE TABLE IF NOT EXISTS kv_blobs (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// Postgres implements Storage on a single table keyed by blob name.
type Postgres struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgres wraps an open connection pool. The caller owns db unless Close is called.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{
		db:     db,
		tracer: otel.Tracer("gamershop/storage"),
	}
}

// EnsureSchema creates the blob table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("create kv_blobs table: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := p.tracer.Start(ctx, "storage.postgres.get",
		trace.WithAttributes(attribute.String("storage.key", key)),
	)
	defer span.End()

	var value []byte
	err := p.db.QueryRowContext(ctx, `
		SELECT value
		FROM kv_blobs
		WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query blob: %w", err)
	}

	span.SetAttributes(attribute.Int("storage.bytes", len(value)))
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := p.tracer.Start(ctx, "storage.postgres.set",
		trace.WithAttributes(
			attribute.String("storage.key", key),
			attribute.Int("storage.bytes", len(value)),
		),
	)
	defer span.End()

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO kv_blobs (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("upsert blob: %w", err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	ctx, span := p.tracer.Start(ctx, "storage.postgres.delete",
		trace.WithAttributes(attribute.String("storage.key", key)),
	)
	defer span.End()

	if _, err := p.db.ExecContext(ctx, `DELETE FROM kv_blobs WHERE key = $1`, key); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
