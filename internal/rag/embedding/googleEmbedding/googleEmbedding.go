package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/customHttpClient"
	"github.com/akolanti/PDFChat/internal/rag/embedding"
	"github.com/akolanti/PDFChat/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	taskQuery    = "RETRIEVAL_QUERY"
	taskDocument = "RETRIEVAL_DOCUMENT"
	retryDelay   = 5 * time.Second
)

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func NewGoogleEmbedder(ctx context.Context, modelName string, apikey string, dimension int32) (embedding.Embedder, error) {
	if apikey == "" {
		return nil, errors.New("google api key is not set")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.GetClient(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating google embedding client: %w", err)
	}
	logger := logger_i.NewLogger("google_embedding")
	logger.Info("Google Embedding client created", "model", modelName)
	return &client{genAi: c, model: modelName, dimension: dimension, logger: logger}, nil
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query}, taskQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}
	return c.embed(ctx, chunks, taskDocument)
}

func (c *client) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	log := c.logger.FromContext(ctx)

	res, err := c.doCall(ctx, getContent(texts), task)
	if err != nil && doRetry(err) {
		log.Warn("Rate limit hit, retrying", "delay", retryDelay)
		select {
		case <-ctx.Done():
			return nil, appErrors.Upstream("google.EmbedContent", ctx.Err())
		case <-time.After(retryDelay):
		}
		res, err = c.doCall(ctx, getContent(texts), task)
	}
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, appErrors.Upstream("google.EmbedContent", err)
	}
	if res == nil || len(res.Embeddings) != len(texts) {
		return nil, appErrors.Upstream("google.EmbedContent", fmt.Errorf("expected %d embeddings", len(texts)))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, task string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             task,
	})
}

func getContent(chunks []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contents = append(contents, genai.NewContentFromText(chunk, genai.RoleUser))
	}
	return contents
}

// doRetry reports rate limiting, either as an API status or a gRPC code.
func doRetry(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		return true
	}
	return false
}
