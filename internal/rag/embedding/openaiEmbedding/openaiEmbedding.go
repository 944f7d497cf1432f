package openaiEmbedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/nkapoor/docuchat/internal/config"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
	"github.com/nkapoor/docuchat/internal/rag/embedding"
	"github.com/nkapoor/docuchat/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	api   openai.Client
	model string
}

// GetOpenAIEmbeddingClient returns the OpenAI embedder. baseURL may point at
// any OpenAI-compatible endpoint (a hosted deployment or a local Ollama).
func GetOpenAIEmbeddingClient(apikey string, baseURL string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		opts := []option.RequestOption{option.WithAPIKey(apikey)}
		if baseURL != "" {
			opts = append(opts, option.WithBaseURL(baseURL))
		}
		embeddingClient = &client{
			api:   openai.NewClient(opts...),
			model: config.OpenAIEmbeddingModel,
		}
		logger.Info("OpenAI embedding client created", "model", config.OpenAIEmbeddingModel)
	})
	return embeddingClient
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	return c.embed(ctx, chunks)
}

func (c *client) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:      openai.EmbeddingModel(c.model),
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
		Dimensions: openai.Int(int64(config.EmbeddingOutputDimensionality)),
	})
	if err != nil {
		logger.Error("Error getting embeddings from OpenAI", "error", err, "inputs", len(inputs))
		return nil, fmt.Errorf("%w: %v", ragerr.ErrEmbedding, err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
			ragerr.ErrEmbedding, len(resp.Data), len(inputs))
	}
	return collectVectors(resp.Data, len(inputs))
}

// collectVectors places each embedding at its reported input index. The API
// does not guarantee response order, so d.Index is authoritative.
func collectVectors(data []openai.Embedding, n int) ([][]float32, error) {
	vectors := make([][]float32, n)
	for _, d := range data {
		if d.Index < 0 || int(d.Index) >= n {
			return nil, fmt.Errorf("%w: embedding index %d out of range for %d inputs",
				ragerr.ErrEmbedding, d.Index, n)
		}
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		vectors[d.Index] = vec
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("%w: no embedding returned for input %d", ragerr.ErrEmbedding, i)
		}
	}
	return vectors, nil
}
