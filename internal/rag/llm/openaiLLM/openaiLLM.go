package openaiLLM

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/customHttpClient"
	"github.com/akolanti/PDFChat/internal/rag/llm"
	"github.com/akolanti/PDFChat/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	client      openai.Client
	modelName   string
	temperature float64
	logger      *logger_i.Logger
}

func NewOpenAIClient(cfg config.OpenAIConfig, modelName string, temperature float32, opts ...option.RequestOption) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is not set")
	}
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(customHttpClient.GetClient()),
	}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.BaseURL))
	}

	logger := logger_i.NewLogger("llm_openai")
	logger.Info("OpenAI chat client created", "model", modelName)
	return &llmClient{
		client:      openai.NewClient(append(base, opts...)...),
		modelName:   modelName,
		temperature: float64(temperature),
		logger:      logger,
	}, nil
}

func (c *llmClient) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	log := c.logger.FromContext(ctx)

	res, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.modelName),
		Messages:    toMessages(prompt),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		log.Error("Chat completion failed", "error", err)
		return "", appErrors.Upstream("openai.ChatCompletion", err)
	}
	if len(res.Choices) == 0 {
		return "", appErrors.Upstream("openai.ChatCompletion", fmt.Errorf("no choices returned"))
	}
	log.Debug("Chat completion", "model", res.Model, "totalTokens", res.Usage.TotalTokens)
	return res.Choices[0].Message.Content, nil
}

func toMessages(prompt llm.Prompt) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2*len(prompt.History)+2)
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	for _, turn := range prompt.History {
		messages = append(messages, openai.UserMessage(turn.Question), openai.AssistantMessage(turn.Answer))
	}
	return append(messages, openai.UserMessage(prompt.User))
}
