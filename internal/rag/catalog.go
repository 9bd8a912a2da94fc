package rag

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/rag/embedding"
	"github.com/akolanti/PDFChat/internal/rag/vectorDB"
	"github.com/akolanti/PDFChat/pkg/logger_i"
)

// Catalog lists and removes ingested files.
type Catalog struct {
	embedder     embedding.Embedder
	store        vectorDB.Store
	uploadFolder string
	logger       *logger_i.Logger
}

func NewCatalog(embedder embedding.Embedder, store vectorDB.Store, uploadFolder string) *Catalog {
	return &Catalog{embedder: embedder, store: store, uploadFolder: uploadFolder, logger: logger_i.NewLogger("File Catalog")}
}

// ListFiles returns the distinct source files found among the first
// CatalogProbeK chunks near a fixed probe vector.
func (c *Catalog) ListFiles(ctx context.Context) ([]string, error) {
	log := c.logger.FromContext(ctx)

	vector, err := executeEmbeddingStep(ctx, log, c.embedder, config.CatalogProbeText)
	if err != nil {
		return nil, appErrors.Upstream("catalog.embed", err)
	}
	chunks, err := executeVectorSearchStep(ctx, log, c.store, vector, config.CatalogProbeK, nil)
	if err != nil {
		return nil, appErrors.Upstream("catalog.search", err)
	}
	return distinctSources(chunks), nil
}

// DeleteFile drops every chunk tagged with name and the uploaded copy if one
// is still on disk. Unknown names are a no-op.
func (c *Catalog) DeleteFile(ctx context.Context, name string) error {
	log := c.logger.FromContext(ctx).With("file", name)
	if strings.TrimSpace(name) == "" {
		return appErrors.Validation("catalog.DeleteFile", "No file name provided")
	}

	if err := c.store.DeleteBySource(ctx, name); err != nil {
		log.Error("Vector delete failed", "error", err)
		return appErrors.Upstream("catalog.delete", err)
	}

	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) || c.uploadFolder == "" {
		return nil
	}
	err := os.Remove(filepath.Join(c.uploadFolder, base))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error("Removing uploaded file failed", "error", err)
		return appErrors.Internal("catalog.removeFile", err)
	}
	log.Info("File deleted")
	return nil
}
