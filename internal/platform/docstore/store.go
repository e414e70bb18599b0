// Package docstore is a local keyed document store on SQLite. Documents are
// msgpack-encoded and grouped into buckets.
package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/odyssey-erp/costbook/internal/shared"
)

// ErrNotFound is returned when a key has no document.
var ErrNotFound = shared.NotFound("docstore: document not found")

// Store persists documents in a single SQLite table.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "costbook.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("docstore: create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("docstore: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		bucket TEXT NOT NULL,
		key TEXT NOT NULL,
		payload BLOB NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (bucket, key)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("docstore: create documents table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Put writes one document, replacing any existing one under key.
func (s *Store) Put(ctx context.Context, bucket, key string, doc any) error {
	payload, err := msgpack.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: encode %s/%s: %w", bucket, key, err)
	}
	_, err = s.db.ExecContext(ctx, upsertSQL, bucket, key, payload, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("docstore: put %s/%s: %w", bucket, key, err)
	}
	return nil
}

// BulkPut writes several documents in one transaction.
func (s *Store) BulkPut(ctx context.Context, bucket string, docs map[string]any) (retErr error) {
	if len(docs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("docstore: begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	now := time.Now().UnixNano()
	for key, doc := range docs {
		payload, err := msgpack.Marshal(doc)
		if err != nil {
			return fmt.Errorf("docstore: encode %s/%s: %w", bucket, key, err)
		}
		if _, err := tx.ExecContext(ctx, upsertSQL, bucket, key, payload, now); err != nil {
			return fmt.Errorf("docstore: put %s/%s: %w", bucket, key, err)
		}
	}
	return tx.Commit()
}

// Get decodes the document under key into dest.
func (s *Store) Get(ctx context.Context, bucket, key string, dest any) error {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE bucket=? AND key=?`, bucket, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	if err != nil {
		return fmt.Errorf("docstore: get %s/%s: %w", bucket, key, err)
	}
	if err := msgpack.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("docstore: decode %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Delete removes a document. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE bucket=? AND key=?`, bucket, key)
	return err
}

// Query decodes every document in bucket, in key order, and keeps those
// accepted by match. A nil match keeps everything.
func Query[T any](ctx context.Context, s *Store, bucket string, match func(T) bool) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, payload FROM documents WHERE bucket=? ORDER BY key`, bucket)
	if err != nil {
		return nil, fmt.Errorf("docstore: query %s: %w", bucket, err)
	}
	defer func() { _ = rows.Close() }()
	out := []T{}
	for rows.Next() {
		var (
			key     string
			payload []byte
		)
		if err := rows.Scan(&key, &payload); err != nil {
			return nil, fmt.Errorf("docstore: scan %s: %w", bucket, err)
		}
		var doc T
		if err := msgpack.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("docstore: decode %s/%s: %w", bucket, key, err)
		}
		if match == nil || match(doc) {
			out = append(out, doc)
		}
	}
	return out, rows.Err()
}

const upsertSQL = `INSERT INTO documents (bucket, key, payload, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(bucket, key) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`
