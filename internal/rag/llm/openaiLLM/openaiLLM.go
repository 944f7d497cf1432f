package openaiLLM

import (
	"context"
	"fmt"
	"sync"

	"github.com/nkapoor/docuchat/internal/config"
	"github.com/nkapoor/docuchat/internal/domain/commonModels"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
	"github.com/nkapoor/docuchat/internal/rag/llm"
	"github.com/nkapoor/docuchat/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

var logger *logger_i.Logger
var once sync.Once
var llmClient *client

type client struct {
	api          openai.Client
	model        string
	instructions string
}

// GetOpenAIClient returns an OpenAI provider carrying the given system
// instructions. baseURL may point at any OpenAI-compatible endpoint (a hosted
// deployment or a local Ollama). The underlying API client is shared; each
// caller gets its own instructions.
func GetOpenAIClient(apikey string, baseURL string, instructions string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		opts := []option.RequestOption{option.WithAPIKey(apikey)}
		if baseURL != "" {
			opts = append(opts, option.WithBaseURL(baseURL))
		}
		llmClient = &client{
			api:   openai.NewClient(opts...),
			model: config.OpenAIModelName,
		}
		logger.Info("OpenAI client created", "model", config.OpenAIModelName)
	})
	return &client{api: llmClient.api, model: llmClient.model, instructions: instructions}
}

func (c *client) Generate(ctx context.Context, prompt string, history []commonModels.Turn) (string, error) {
	items := make([]responses.ResponseInputItemUnionParam, 0, len(history)+1)
	for _, turn := range history {
		role := responses.EasyInputMessageRoleUser
		if turn.Speaker == commonModels.SpeakerAssistant {
			role = responses.EasyInputMessageRoleAssistant
		}
		items = append(items, responses.ResponseInputItemParamOfMessage(turn.Text, role))
	}
	items = append(items, responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser))

	resp, err := c.api.Responses.New(ctx, responses.ResponseNewParams{
		Model:        c.model,
		Instructions: openai.String(c.instructions),
		Input:        responses.ResponseNewParamsInputUnion{OfInputItemList: items},
	})
	if err != nil {
		logger.Error("OpenAI generation failed", "error", err)
		return "", fmt.Errorf("%w: %v", ragerr.ErrGateway, err)
	}
	return resp.OutputText(), nil
}
