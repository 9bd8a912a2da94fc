package chromemDB

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/domain/commonModels"
	"github.com/akolanti/PDFChat/pkg/logger_i"
	"github.com/philippgille/chromem-go"
)

var errNoEmbeddingFunc = errors.New("chromem store only accepts precomputed embeddings")

// Store is an embedded vector index. With an empty path it lives in memory only.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	logger     *logger_i.Logger
}

func NewChromemStore(cfg config.ChromemConfig, collectionName string) (*Store, error) {
	if collectionName == "" {
		return nil, errors.New("empty collection name")
	}
	logger := logger_i.NewLogger("Chromem").With("collection", collectionName)

	db := chromem.NewDB()
	if cfg.Path != "" {
		var err error
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("opening chromem db at %s: %w", cfg.Path, err)
		}
		logger.Info("Opened persistent chromem db", "path", cfg.Path)
	}

	store := &Store{db: db, name: collectionName, logger: logger}
	if err := store.EnsureIndex(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) EnsureIndex(_ context.Context) error {
	if s.collection != nil {
		return nil
	}
	collection, err := s.db.GetOrCreateCollection(s.name, nil, noEmbedding)
	if err != nil {
		return appErrors.Internal("chromem.GetOrCreateCollection", err)
	}
	s.collection = collection
	return nil
}

func noEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errNoEmbeddingFunc
}

func (s *Store) Upsert(ctx context.Context, chunks []commonModels.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return appErrors.Internal("chromem.Upsert", fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors)))
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        chunk.Id,
			Metadata:  toMetadata(chunk),
			Embedding: vectors[i],
			Content:   chunk.Text,
		}
	}
	if err := s.collection.AddDocuments(ctx, docs, config.ChromemConcurrency); err != nil {
		return appErrors.Upstream("chromem.AddDocuments", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, k int, filter commonModels.Filter) ([]commonModels.Chunk, error) {
	// chromem refuses k above the collection size
	k = min(k, s.collection.Count())
	if k <= 0 {
		return []commonModels.Chunk{}, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, k, filter, nil)
	if err != nil {
		return nil, appErrors.Upstream("chromem.QueryEmbedding", err)
	}

	chunks := make([]commonModels.Chunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, fromMetadata(r.ID, r.Content, r.Metadata))
	}
	s.logger.FromContext(ctx).Debug("Chromem search", "k", k, "matches", len(chunks))
	return chunks, nil
}

func (s *Store) DeleteBySource(ctx context.Context, sourceFile string) error {
	err := s.collection.Delete(ctx, map[string]string{config.SourceFileKey: sourceFile}, nil)
	if err != nil {
		return appErrors.Upstream("chromem.Delete", err)
	}
	return nil
}

// Count is the number of stored chunks.
func (s *Store) Count() int {
	return s.collection.Count()
}

func toMetadata(chunk commonModels.Chunk) map[string]string {
	meta := make(map[string]string, len(chunk.PageMetadata)+1)
	for key, value := range chunk.PageMetadata {
		meta[key] = fmt.Sprint(value)
	}
	meta[config.SourceFileKey] = chunk.SourceFile
	return meta
}

func fromMetadata(id string, content string, meta map[string]string) commonModels.Chunk {
	chunk := commonModels.Chunk{
		Id:           id,
		Text:         content,
		SourceFile:   meta[config.SourceFileKey],
		PageMetadata: make(map[string]any, len(meta)),
	}
	for key, value := range meta {
		if key == config.SourceFileKey {
			continue
		}
		if n, err := strconv.Atoi(value); err == nil {
			chunk.PageMetadata[key] = n
			continue
		}
		chunk.PageMetadata[key] = value
	}
	return chunk
}
