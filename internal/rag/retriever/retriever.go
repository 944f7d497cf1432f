package retriever

import (
	"context"
	"fmt"
	"time"

	"github.com/nkapoor/docuchat/internal/domain/commonModels"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
	"github.com/nkapoor/docuchat/internal/metrics"
	"github.com/nkapoor/docuchat/internal/rag/embedding"
	"github.com/nkapoor/docuchat/internal/rag/vectorDB"
)

// Retriever embeds a query and returns the top-k most similar indexed chunks.
// An embedding failure propagates; silently returning nothing would just
// degrade answer quality without anyone noticing.
type Retriever struct {
	embedder embedding.Embedder
	index    vectorDB.Index
}

func New(embedder embedding.Embedder, index vectorDB.Index) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]commonModels.ScoredChunk, error) {
	start := time.Now()
	vector, err := r.embedder.GetEmbedding(ctx, query)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: query embedding: %v", ragerr.ErrEmbedding, err)
	}

	start = time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()
	return r.index.Search(ctx, vector, k)
}
