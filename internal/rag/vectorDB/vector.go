package vectorDB

import (
	"context"

	"github.com/nkapoor/docuchat/internal/domain/commonModels"
)

// Index stores (vector, chunk) entries for one session and answers
// nearest-neighbor queries by cosine similarity. Add is additive; the ingest
// path always calls Clear first so a session never mixes documents. Searching
// an empty index returns an empty result, not an error; k larger than the
// index is clamped.
type Index interface {
	Add(ctx context.Context, entries []commonModels.IndexEntry) error
	Search(ctx context.Context, vector []float32, k int) ([]commonModels.ScoredChunk, error)
	Clear(ctx context.Context) error
}
