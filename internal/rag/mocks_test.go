package rag_test

import (
	"context"

	"github.com/akolanti/PDFChat/internal/domain/commonModels"
	"github.com/akolanti/PDFChat/internal/rag/ingest"
	"github.com/akolanti/PDFChat/internal/rag/llm"
)

// MockStore implements vectorDB.Store
type MockStore struct {
	OnSearch         func(ctx context.Context, vector []float32, k int, filter commonModels.Filter) ([]commonModels.Chunk, error)
	OnUpsert         func(ctx context.Context, chunks []commonModels.Chunk, vectors [][]float32) error
	OnDeleteBySource func(ctx context.Context, sourceFile string) error
}

func (m *MockStore) EnsureIndex(ctx context.Context) error { return nil }

func (m *MockStore) Upsert(ctx context.Context, chunks []commonModels.Chunk, vectors [][]float32) error {
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, chunks, vectors)
	}
	return nil
}

func (m *MockStore) Search(ctx context.Context, vector []float32, k int, filter commonModels.Filter) ([]commonModels.Chunk, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, vector, k, filter)
	}
	return []commonModels.Chunk{}, nil
}

func (m *MockStore) DeleteBySource(ctx context.Context, sourceFile string) error {
	if m.OnDeleteBySource != nil {
		return m.OnDeleteBySource(ctx, sourceFile)
	}
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i := range out {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1, 0.2}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt llm.Prompt) (string, error)
	Prompts    []llm.Prompt
}

func (m *MockLLM) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}

type MockIngester struct {
	OnIngest func(ctx context.Context, path string) (ingest.Result, error)
}

func (m *MockIngester) Ingest(ctx context.Context, path string) (ingest.Result, error) {
	if m.OnIngest != nil {
		return m.OnIngest(ctx, path)
	}
	return ingest.Result{SourceFile: ingest.SourceFileName(path)}, nil
}
