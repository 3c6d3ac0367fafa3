package jsonfile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/secondlabor/laborhub/types"
)

func TestLoadMissingFileYieldsEmptyCollection(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "collection.json"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	col, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(col.Tasks) != 0 || len(col.Workers) != 0 {
		t.Fatalf("expected empty collection: %#v", col)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "collection.json"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	col := types.Collection{
		Workers: []types.Worker{{ID: "w-1", SecondUserID: "u-1", Name: "Atlas"}},
		Tasks: []types.Task{{
			ID:            "t-1",
			Title:         "Retouch set",
			LaborType:     "studio-retouch",
			LaborTypeName: "Studio Retouch",
			Status:        types.StatusOpen,
			Participants:  []string{},
			Updates:       []types.TaskUpdate{},
		}},
	}
	if err := s.Save(ctx, col); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Tasks) != 1 || loaded.Tasks[0].ID != "t-1" {
		t.Fatalf("unexpected tasks: %#v", loaded.Tasks)
	}
	if loaded.Tasks[0].Status != types.StatusOpen {
		t.Fatalf("status lost: %q", loaded.Tasks[0].Status)
	}
	if len(loaded.Workers) != 1 || loaded.Workers[0].Name != "Atlas" {
		t.Fatalf("unexpected workers: %#v", loaded.Workers)
	}
}

func TestSaveReplacesWholeDocument(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "collection.json"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, types.Collection{Tasks: []types.Task{{ID: "a"}, {ID: "b"}}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(ctx, types.Collection{Tasks: []types.Task{{ID: "c"}}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Tasks) != 1 || loaded.Tasks[0].ID != "c" {
		t.Fatalf("last write should win wholesale: %#v", loaded.Tasks)
	}
}
