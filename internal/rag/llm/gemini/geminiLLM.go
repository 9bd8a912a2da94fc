package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/customHttpClient"
	"github.com/akolanti/PDFChat/internal/rag/llm"
	"github.com/akolanti/PDFChat/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client      *genai.Client
	modelName   string
	temperature float32
	logger      *logger_i.Logger
}

func NewGeminiClient(ctx context.Context, apikey string, modelName string, temperature float32) (llm.Provider, error) {
	if apikey == "" {
		return nil, errors.New("google api key is not set")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.GetClient(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName, temperature: temperature, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	log := c.logger.FromContext(ctx)

	contentConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if prompt.System != "" {
		contentConfig.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, toContents(prompt), contentConfig)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", appErrors.Upstream("gemini.GenerateContent", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", appErrors.Upstream("gemini.GenerateContent", errors.New("no candidates returned"))
	}
	return result.Text(), nil
}

// toContents maps history to alternating user/model turns ending with the user message.
func toContents(prompt llm.Prompt) []*genai.Content {
	contents := make([]*genai.Content, 0, 2*len(prompt.History)+1)
	for _, turn := range prompt.History {
		contents = append(contents,
			genai.NewContentFromText(turn.Question, genai.RoleUser),
			genai.NewContentFromText(turn.Answer, genai.RoleModel),
		)
	}
	return append(contents, genai.NewContentFromText(prompt.User, genai.RoleUser))
}
