// Package docstore implements the document-store boundary on
// Postgres: a single JSONB table plus LISTEN/NOTIFY to turn every
// write into a full-snapshot push for subscribers.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/viewdeck/video-dashboard-go/internal/source"
	"github.com/viewdeck/video-dashboard-go/pkg/logger"
)

const notifyChannel = "documents_changed"

const createTableSQL = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	fields     JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`

// Postgres is a source.Sink and source.Source backed by one JSONB
// documents table.
type Postgres struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// New creates the store and ensures the documents table exists.
func New(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Postgres{
		pool: pool,
		log:  logger.Named("docstore"),
	}, nil
}

// WriteDocument upserts one document and notifies listeners of the
// collection change.
func (p *Postgres) WriteDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document fields: %w", err)
	}

	query := `
		INSERT INTO documents (collection, id, fields, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, id) DO UPDATE SET fields = $3, updated_at = now()
	`
	if _, err := p.pool.Exec(ctx, query, collection, id, raw); err != nil {
		return fmt.Errorf("upsert document %s/%s: %w", collection, id, err)
	}

	return p.notify(ctx, collection)
}

// DeleteDocument removes one document and notifies listeners.
func (p *Postgres) DeleteDocument(ctx context.Context, collection, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id); err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	return p.notify(ctx, collection)
}

func (p *Postgres) notify(ctx context.Context, collection string) error {
	if _, err := p.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, collection); err != nil {
		return fmt.Errorf("notify %s: %w", collection, err)
	}
	return nil
}

// Load reads the full current snapshot of a collection.
func (p *Postgres) Load(ctx context.Context, collection string) (source.Snapshot, error) {
	rows, err := p.pool.Query(ctx, `SELECT fields FROM documents WHERE collection = $1 ORDER BY updated_at`, collection)
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", collection, err)
	}
	defer rows.Close()

	var snap source.Snapshot
	for rows.Next() {
		var raw json.RawMessage
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		snap = append(snap, raw)
	}
	return snap, rows.Err()
}

// Subscribe delivers the current snapshot immediately and a fresh
// full snapshot after every notified change to the collection. The
// channel closes when ctx is cancelled or the listening connection
// drops.
func (p *Postgres) Subscribe(ctx context.Context, collection string) (<-chan source.Snapshot, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, `LISTEN `+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", notifyChannel, err)
	}

	out := make(chan source.Snapshot, 16)
	go func() {
		defer close(out)
		defer conn.Release()

		send := func() bool {
			snap, err := p.Load(ctx, collection)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				p.log.Warn("failed to load snapshot after change",
					zap.String("collection", collection),
					zap.Error(err),
				)
				return true
			}
			select {
			case out <- snap:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send() {
			return
		}

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					p.log.Warn("listen connection lost",
						zap.String("collection", collection),
						zap.Error(err),
					)
				}
				return
			}
			if n.Payload != collection {
				continue
			}
			if !send() {
				return
			}
		}
	}()

	return out, nil
}
