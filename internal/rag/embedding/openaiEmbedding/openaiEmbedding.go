package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/customHttpClient"
	"github.com/akolanti/PDFChat/internal/rag/embedding"
	"github.com/akolanti/PDFChat/pkg/logger_i"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

type client struct {
	embedder *embeddings.EmbedderImpl
	logger   *logger_i.Logger
}

func NewOpenAIEmbedder(cfg config.OpenAIConfig, model string) (embedding.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is not set")
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithEmbeddingModel(model),
		openai.WithHTTPClient(customHttpClient.GetClient()),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai embedding client: %w", err)
	}

	c, err := newClient(llm)
	if err != nil {
		return nil, err
	}
	c.logger.Info("OpenAI Embedding client created", "model", model)
	return c, nil
}

func newClient(source embeddings.EmbedderClient) (*client, error) {
	e, err := embeddings.NewEmbedder(source, embeddings.WithBatchSize(config.EmbeddingBatchSize))
	if err != nil {
		return nil, err
	}
	return &client{embedder: e, logger: logger_i.NewLogger("openai_embedding")}, nil
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vector, err := c.embedder.EmbedQuery(ctx, query)
	if err != nil {
		c.logger.FromContext(ctx).Error("Error getting query embedding", "error", err)
		return nil, appErrors.Upstream("openai.EmbedQuery", err)
	}
	return vector, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}
	// the embedder rewrites newlines in place
	texts := append([]string(nil), chunks...)

	vectors, err := c.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		c.logger.FromContext(ctx).Error("Error getting document embeddings", "error", err, "count", len(chunks))
		return nil, appErrors.Upstream("openai.EmbedDocuments", err)
	}
	if len(vectors) != len(chunks) {
		return nil, appErrors.Upstream("openai.EmbedDocuments", fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(vectors)))
	}
	return vectors, nil
}
