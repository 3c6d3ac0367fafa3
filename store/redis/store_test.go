package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/secondlabor/laborhub/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	prefix := "laborhub-test-" + uuid.NewString()

	s, err := New(addr, WithPrefix(prefix))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable at %s: %v", addr, err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.client.Del(ctx, s.key()).Err()
		_ = s.Close()
	})
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	col, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(col.Tasks) != 0 {
		t.Fatalf("fresh key should be empty: %#v", col)
	}

	if err := s.Save(ctx, types.Collection{Tasks: []types.Task{{ID: "t-redis", Status: types.StatusOpen}}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Tasks) != 1 || loaded.Tasks[0].ID != "t-redis" {
		t.Fatalf("unexpected collection: %#v", loaded)
	}
}
