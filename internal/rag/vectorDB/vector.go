package vectorDB

import (
	"context"

	"github.com/akolanti/PDFChat/internal/domain/commonModels"
)

// Store is the vector index used by ingestion, retrieval and the file catalog.
type Store interface {
	// EnsureIndex creates the collection if it is missing.
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, chunks []commonModels.Chunk, vectors [][]float32) error
	// Search returns at most k chunks ranked by similarity. An empty result is not an error.
	Search(ctx context.Context, vector []float32, k int, filter commonModels.Filter) ([]commonModels.Chunk, error)
	DeleteBySource(ctx context.Context, sourceFile string) error
}
