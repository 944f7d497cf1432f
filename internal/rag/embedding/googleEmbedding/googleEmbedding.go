package googleEmbedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/nkapoor/docuchat/internal/config"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
	"github.com/nkapoor/docuchat/internal/rag/embedding"
	"github.com/nkapoor/docuchat/pkg/logger_i"
	"google.golang.org/genai"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

// GetGoogleEmbeddingClient returns the Gemini embedder, or nil when the
// client could not be created.
func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return
	}
	embeddingClient = &client{
		genAi: c,
		model: modelName,
	}
	logger.Info("Google Embedding client created", "model", modelName)
	go closeClient(ctx, embeddingClient)
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	result, err := c.doCall(ctx, genai.Text(query))
	if err != nil {
		logger.Error("Error getting embedding from Google", "error", err)
		return nil, fmt.Errorf("%w: %v", ragerr.ErrEmbedding, err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: empty response", ragerr.ErrEmbedding)
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	content := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		content = append(content, genai.Text(chunk)...)
	}

	res, err := c.doCall(ctx, content)
	if err != nil {
		logger.Error("Error getting batch embeddings from Google", "error", err, "chunks", len(chunks))
		return nil, fmt.Errorf("%w: %v", ragerr.ErrEmbedding, err)
	}
	if len(res.Embeddings) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks",
			ragerr.ErrEmbedding, len(res.Embeddings), len(chunks))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, r := range res.Embeddings {
		vectors[i] = r.Values
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content,
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
}
