package embedding

import "context"

// Embedder maps text to a fixed-dimension vector. Dimensionality is fixed per
// deployment; every vector compared in one index must come from the same
// embedder configuration.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
