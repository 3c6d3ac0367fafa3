// Package redis keeps the collection document under a single key.
// Useful when several read-mostly instances share one document and
// accept last-write-wins semantics.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/secondlabor/laborhub/types"
)

const defaultPrefix = "laborhub"

type Store struct {
	client   *goredis.Client
	prefix   string
	addr     string
	db       int
	password string
}

type Option func(*Store)

func WithPassword(password string) Option {
	return func(s *Store) {
		s.password = password
	}
}

func WithDB(db int) Option {
	return func(s *Store) {
		s.db = db
	}
}

func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if strings.TrimSpace(prefix) != "" {
			s.prefix = strings.TrimSpace(prefix)
		}
	}
}

func WithClient(client *goredis.Client) Option {
	return func(s *Store) {
		if client != nil {
			s.client = client
		}
	}
}

func New(addr string, opts ...Option) (*Store, error) {
	s := &Store{prefix: defaultPrefix, addr: strings.TrimSpace(addr)}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		if s.addr == "" {
			return nil, fmt.Errorf("redis address is required")
		}
		s.client = goredis.NewClient(&goredis.Options{
			Addr:        s.addr,
			Password:    s.password,
			DB:          s.db,
			DialTimeout: 5 * time.Second,
		})
	}
	return s, nil
}

func (s *Store) key() string {
	return s.prefix + ":collection"
}

func (s *Store) Load(ctx context.Context) (types.Collection, error) {
	raw, err := s.client.Get(ctx, s.key()).Result()
	if errors.Is(err, goredis.Nil) {
		return types.Collection{}, nil
	}
	if err != nil {
		return types.Collection{}, fmt.Errorf("failed to load collection: %w", err)
	}
	var col types.Collection
	if err := json.Unmarshal([]byte(raw), &col); err != nil {
		return types.Collection{}, fmt.Errorf("failed to decode collection: %w", err)
	}
	return col, nil
}

func (s *Store) Save(ctx context.Context, col types.Collection) error {
	body, err := json.Marshal(col)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), string(body), 0).Err(); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
