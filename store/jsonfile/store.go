// Package jsonfile persists the collection as a single JSON document on
// disk. Saves go through a temp file and rename so a crashed write never
// leaves a torn document behind.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/secondlabor/laborhub/types"
)

type Store struct {
	path string
}

func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("jsonfile store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &Store{path: path}, nil
}

func (s *Store) Load(ctx context.Context) (types.Collection, error) {
	if err := ctx.Err(); err != nil {
		return types.Collection{}, err
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return types.Collection{}, nil
	}
	if err != nil {
		return types.Collection{}, fmt.Errorf("failed to read collection: %w", err)
	}
	var col types.Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return types.Collection{}, fmt.Errorf("failed to decode collection %q: %w", s.path, err)
	}
	return col, nil
}

func (s *Store) Save(ctx context.Context, col types.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write collection: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace collection: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
