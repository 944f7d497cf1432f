package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nkapoor/docuchat/internal/domain/commonModels"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
	"github.com/nkapoor/docuchat/internal/rag/llm"
	"github.com/nkapoor/docuchat/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client       *genai.Client
	modelName    string
	instructions string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

// GetGeminiClient returns a Gemini provider carrying the given system
// instructions, or nil when the client could not be created. The underlying
// genai client is shared; each caller gets its own instructions.
func GetGeminiClient(ctx context.Context, modelName string, apikey string, instructions string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName, instructions: instructions}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Gemini client created", "model", modelName)
	go closeClient(ctx, geminiClient)
}

func (c *llmClient) Generate(ctx context.Context, prompt string, history []commonModels.Turn) (string, error) {
	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: c.instructions},
		},
	}

	userPrompt := prompt
	if len(history) > 0 {
		var b strings.Builder
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			b.WriteString(turn.Speaker)
			b.WriteString(": ")
			b.WriteString(turn.Text)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(prompt)
		userPrompt = b.String()
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(userPrompt),
		&genai.GenerateContentConfig{SystemInstruction: systemInstruction},
	)
	if err != nil {
		logger.Error("Gemini generation failed", "error", err)
		return "", fmt.Errorf("%w: %v", ragerr.ErrGateway, err)
	}
	return result.Text(), nil
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}
