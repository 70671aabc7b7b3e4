package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    user_id    TEXT        NOT NULL,
    collection TEXT        NOT NULL,
    doc_key    TEXT        NOT NULL,
    data       JSONB       NOT NULL DEFAULT '{}'::jsonb,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, collection, doc_key)
)`

// Postgres stores every document as a jsonb row.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, userID, collection, key string) (Document, error) {
	if err := checkPartition(userID, collection); err != nil {
		return nil, err
	}
	key, err := NormalizeKey(key)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT data
	FROM documents
	WHERE user_id = $1 AND collection = $2 AND doc_key = $3
	`
	var raw []byte
	err = s.db.QueryRow(ctx, query, userID, collection, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s/%s: %w", collection, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, key, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, key, err)
	}
	return doc, nil
}

func (s *Postgres) GetAll(ctx context.Context, userID, collection string) (map[string]Document, error) {
	if err := checkPartition(userID, collection); err != nil {
		return nil, err
	}

	query := `
	SELECT doc_key, data
	FROM documents
	WHERE user_id = $1 AND collection = $2
	`
	rows, err := s.db.Query(ctx, query, userID, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	out := make(map[string]Document)
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, key, err)
		}
		out[key] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Save locks the row, merges in Go and writes the result back, so nested
// maps merge the same way they do on every other backend.
func (s *Postgres) Save(ctx context.Context, userID, collection, key string, partial Document) error {
	if err := checkPartition(userID, collection); err != nil {
		return err
	}
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	incoming, err := Clone(partial)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current Document
	var raw []byte
	err = tx.QueryRow(ctx, `
	SELECT data
	FROM documents
	WHERE user_id = $1 AND collection = $2 AND doc_key = $3
	FOR UPDATE
	`, userID, collection, key).Scan(&raw)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to lock %s/%s: %w", collection, key, err)
	default:
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("failed to decode %s/%s: %w", collection, key, err)
		}
	}

	merged, err := json.Marshal(Merge(current, incoming))
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, key, err)
	}

	_, err = tx.Exec(ctx, `
	INSERT INTO documents (user_id, collection, doc_key, data, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (user_id, collection, doc_key)
	DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, userID, collection, key, merged)
	if err != nil {
		return fmt.Errorf("failed to save %s/%s: %w", collection, key, err)
	}

	return tx.Commit(ctx)
}

func (s *Postgres) Delete(ctx context.Context, userID, collection, key string) error {
	if err := checkPartition(userID, collection); err != nil {
		return err
	}
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `DELETE FROM documents WHERE user_id = $1 AND collection = $2 AND doc_key = $3`, userID, collection, key)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Postgres) Close() error {
	s.db.Close()
	return nil
}
