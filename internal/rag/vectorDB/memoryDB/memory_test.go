package memoryDB

import (
	"context"
	"errors"
	"testing"

	"github.com/nkapoor/docuchat/internal/domain/commonModels"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
)

func entry(id string, vec ...float32) commonModels.IndexEntry {
	return commonModels.IndexEntry{
		Vector: vec,
		Chunk:  commonModels.DocChunk{ChunkId: id, Text: "chunk " + id},
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx := NewIndex(3)
	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("search on empty index errored: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSearch_ClampsK(t *testing.T) {
	idx := NewIndex(2)
	err := idx.Add(context.Background(), []commonModels.IndexEntry{
		entry("a", 1, 0),
		entry("b", 0, 1),
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	results, err := idx.Search(context.Background(), []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2 (clamped)", len(results))
	}
}

func TestSearch_Ordering(t *testing.T) {
	idx := NewIndex(2)
	err := idx.Add(context.Background(), []commonModels.IndexEntry{
		entry("far", -1, 0),
		entry("near", 1, 0),
		entry("mid", 1, 1),
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	results, err := idx.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	wantOrder := []string{"near", "mid", "far"}
	for i, want := range wantOrder {
		if results[i].Chunk.ChunkId != want {
			t.Errorf("position %d got %s, want %s", i, results[i].Chunk.ChunkId, want)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Error("results not in descending score order")
		}
	}
}

func TestSearch_StableTieBreak(t *testing.T) {
	idx := NewIndex(2)
	// Identical vectors score identically; insertion order must win.
	err := idx.Add(context.Background(), []commonModels.IndexEntry{
		entry("first", 1, 1),
		entry("second", 1, 1),
		entry("third", 1, 1),
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	results, err := idx.Search(context.Background(), []float32{1, 1}, 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	wantOrder := []string{"first", "second", "third"}
	for i, want := range wantOrder {
		if results[i].Chunk.ChunkId != want {
			t.Errorf("position %d got %s, want %s", i, results[i].Chunk.ChunkId, want)
		}
	}
}

func TestAdd_DimensionMismatch(t *testing.T) {
	idx := NewIndex(3)
	err := idx.Add(context.Background(), []commonModels.IndexEntry{entry("bad", 1, 0)})
	if !errors.Is(err, ragerr.ErrConfig) {
		t.Errorf("got %v, want ErrConfig", err)
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	idx := NewIndex(3)
	if err := idx.Add(context.Background(), []commonModels.IndexEntry{entry("a", 1, 0, 0)}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	_, err := idx.Search(context.Background(), []float32{1, 0}, 1)
	if !errors.Is(err, ragerr.ErrConfig) {
		t.Errorf("got %v, want ErrConfig", err)
	}
}

func TestClear_DiscardsEverything(t *testing.T) {
	idx := NewIndex(2)
	if err := idx.Add(context.Background(), []commonModels.IndexEntry{entry("a", 1, 0)}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := idx.Clear(context.Background()); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("index still holds %d entries after clear", idx.Len())
	}

	results, err := idx.Search(context.Background(), []float32{1, 0}, 1)
	if err != nil || len(results) != 0 {
		t.Errorf("search after clear: results=%d err=%v", len(results), err)
	}
}
