// Package sqlite keeps the collection document in a single-row sqlite
// table. The whole-document contract is unchanged: load reads the row,
// save replaces it.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/secondlabor/laborhub/types"
)

//go:embed schema.sql
var schemaSQL string

const defaultBusyTimeout = 5 * time.Second

type Store struct {
	db          *sql.DB
	busyTimeout time.Duration
	enableWAL   bool
}

type Option func(*Store)

func WithBusyTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout >= 0 {
			s.busyTimeout = timeout
		}
	}
}

func WithWAL(enabled bool) Option {
	return func(s *Store) {
		s.enableWAL = enabled
	}
}

func New(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	s := &Store{busyTimeout: defaultBusyTimeout, enableWAL: true}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d;", s.busyTimeout.Milliseconds())); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if s.enableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable wal: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	s.db = db
	return s, nil
}

func (s *Store) Load(ctx context.Context) (types.Collection, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM collection WHERE id = 1;`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Collection{}, nil
	}
	if err != nil {
		return types.Collection{}, fmt.Errorf("failed to load collection: %w", err)
	}
	var col types.Collection
	if err := json.Unmarshal([]byte(body), &col); err != nil {
		return types.Collection{}, fmt.Errorf("failed to decode collection: %w", err)
	}
	return col, nil
}

func (s *Store) Save(ctx context.Context, col types.Collection) error {
	body, err := json.Marshal(col)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	const q = `INSERT INTO collection (id, body, updated_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at;`
	if _, err := s.db.ExecContext(ctx, q, string(body), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
