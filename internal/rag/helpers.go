package rag

import (
	"context"
	"time"

	"github.com/akolanti/PDFChat/internal/domain/commonModels"
	"github.com/akolanti/PDFChat/internal/metrics"
	"github.com/akolanti/PDFChat/internal/rag/embedding"
	"github.com/akolanti/PDFChat/internal/rag/llm"
	"github.com/akolanti/PDFChat/internal/rag/vectorDB"
	"github.com/akolanti/PDFChat/pkg/logger_i"
)

func logStep(log *logger_i.Logger, step string) {
	log.Debug("RAG step", "step", step)
}

func executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, embedder embedding.Embedder, text string) ([]float32, error) {
	logStep(log, "embedding")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return embedder.GetEmbedding(ctx, text)
}

func executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, store vectorDB.Store, vector []float32, k int, filter commonModels.Filter) ([]commonModels.Chunk, error) {
	logStep(log, "vector_search")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return store.Search(ctx, vector, k, filter)
}

func executeLLMStep(ctx context.Context, log *logger_i.Logger, provider llm.Provider, prompt llm.Prompt) (string, error) {
	logStep(log, "llm_generation")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return provider.Generate(ctx, prompt)
}

// distinctSources keeps the first-seen order of source files.
func distinctSources(chunks []commonModels.Chunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c.SourceFile == "" {
			continue
		}
		if _, ok := seen[c.SourceFile]; ok {
			continue
		}
		seen[c.SourceFile] = struct{}{}
		sources = append(sources, c.SourceFile)
	}
	return sources
}
