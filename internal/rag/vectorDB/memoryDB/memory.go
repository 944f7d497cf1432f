package memoryDB

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/nkapoor/docuchat/internal/domain/commonModels"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
)

// Index is a brute-force in-memory cosine index. One instance serves one
// session; Clear discards the whole entry set atomically.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   []commonModels.IndexEntry
}

func NewIndex(dimension int) *Index {
	return &Index{dimension: dimension}
}

func (idx *Index) Add(ctx context.Context, entries []commonModels.IndexEntry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, e := range entries {
		if len(e.Vector) != idx.dimension {
			return fmt.Errorf("%w: vector dimension %d, index dimension %d",
				ragerr.ErrConfig, len(e.Vector), idx.dimension)
		}
	}
	idx.entries = append(idx.entries, entries...)
	return nil
}

func (idx *Index) Search(ctx context.Context, vector []float32, k int) ([]commonModels.ScoredChunk, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.entries) == 0 {
		return nil, nil
	}
	if len(vector) != idx.dimension {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d",
			ragerr.ErrConfig, len(vector), idx.dimension)
	}
	if k > len(idx.entries) {
		k = len(idx.entries)
	}
	if k <= 0 {
		return nil, nil
	}

	scored := make([]commonModels.ScoredChunk, len(idx.entries))
	for i, e := range idx.entries {
		scored[i] = commonModels.ScoredChunk{Chunk: e.Chunk, Score: cosine(vector, e.Vector)}
	}

	// Stable keeps insertion order for equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored[:k], nil
}

func (idx *Index) Clear(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = nil
	return nil
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

func cosine(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
