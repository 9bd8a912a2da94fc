package rag

import (
	"context"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/domain/commonModels"
	"github.com/akolanti/PDFChat/internal/rag/embedding"
	"github.com/akolanti/PDFChat/internal/rag/vectorDB"
	"github.com/akolanti/PDFChat/pkg/logger_i"
)

type Retriever struct {
	embedder embedding.Embedder
	store    vectorDB.Store
	logger   *logger_i.Logger
}

func NewRetriever(embedder embedding.Embedder, store vectorDB.Store) *Retriever {
	return &Retriever{embedder: embedder, store: store, logger: logger_i.NewLogger("Retriever")}
}

// Retrieve returns up to k chunks closest to query. No match is an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]commonModels.Chunk, error) {
	log := r.logger.FromContext(ctx)

	vector, err := executeEmbeddingStep(ctx, log, r.embedder, query)
	if err != nil {
		return nil, appErrors.Upstream("retriever.embed", err)
	}

	chunks, err := executeVectorSearchStep(ctx, log, r.store, vector, k, nil)
	if err != nil {
		return nil, appErrors.Upstream("retriever.search", err)
	}
	if chunks == nil {
		chunks = []commonModels.Chunk{}
	}
	log.Debug("Retrieved chunks", "k", k, "matches", len(chunks))
	return chunks, nil
}
