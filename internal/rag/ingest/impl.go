package ingest

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/domain/commonModels"
	"github.com/akolanti/PDFChat/internal/metrics"
	"github.com/akolanti/PDFChat/internal/rag/chunker"
	"github.com/akolanti/PDFChat/internal/rag/embedding"
	"github.com/akolanti/PDFChat/internal/rag/vectorDB"
	"github.com/akolanti/PDFChat/pkg/logger_i"
	"golang.org/x/time/rate"
)

type Result struct {
	SourceFile string `json:"source_file"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
	Skipped    bool   `json:"skipped"`
}

type Pipeline struct {
	loader   Loader
	chunker  *chunker.Chunker
	embedder embedding.Embedder
	store    vectorDB.Store
	limiter  *rate.Limiter
	logger   *logger_i.Logger
}

func NewPipeline(loader Loader, c *chunker.Chunker, e embedding.Embedder, store vectorDB.Store) *Pipeline {
	return &Pipeline{
		loader:   loader,
		chunker:  c,
		embedder: e,
		store:    store,
		limiter:  rate.NewLimiter(rate.Limit(config.EmbeddingCallsPerSecond), config.EmbeddingBurst),
		logger:   logger_i.NewLogger("Document Ingestion"),
	}
}

// SourceFileName is the identifier every chunk of a file is tagged with.
func SourceFileName(path string) string {
	return strings.ReplaceAll(filepath.Base(path), " ", "_")
}

// Ingest loads, chunks and stores a PDF. A file whose source name is already
// in the store is skipped without error.
func (p *Pipeline) Ingest(ctx context.Context, filePath string) (Result, error) {
	sourceFile := SourceFileName(filePath)
	log := p.logger.FromContext(ctx).With("sourceFile", sourceFile)
	result := Result{SourceFile: sourceFile}

	start := time.Now()
	pages, err := p.loader.Load(ctx, filePath)
	metrics.CaptureExecutionMetrics("pdf_load", time.Since(start))
	if err != nil {
		return result, err
	}
	result.Pages = len(pages)

	chunks, err := p.prepareChunks(pages, sourceFile, filePath)
	if err != nil {
		return result, err
	}
	log.Debug("Prepared chunks", "pages", len(pages), "chunks", len(chunks))

	exists, err := p.alreadyIngested(ctx, sourceFile)
	if err != nil {
		return result, err
	}
	if exists {
		log.Info("Document already ingested, skipping")
		metrics.IncrementIngestionSkipped()
		result.Skipped = true
		return result, nil
	}

	if len(chunks) == 0 {
		log.Warn("Document has no extractable text")
		return result, nil
	}

	vectors, err := p.embedBatches(ctx, chunks)
	if err != nil {
		return result, err
	}

	start = time.Now()
	err = p.store.Upsert(ctx, chunks, vectors)
	metrics.CaptureExecutionMetrics("vector_upsert", time.Since(start))
	if err != nil {
		log.Error("Upsert failed", "error", err)
		return result, err
	}

	result.Chunks = len(chunks)
	metrics.AddIngestedChunks(len(chunks))
	log.Info("Document ingested", "chunks", len(chunks))
	return result, nil
}

func (p *Pipeline) alreadyIngested(ctx context.Context, sourceFile string) (bool, error) {
	probe, err := p.embedder.GetEmbedding(ctx, sourceFile)
	if err != nil {
		return false, err
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	hits, err := p.store.Search(ctx, probe, config.DedupProbeK, commonModels.Filter{config.SourceFileKey: sourceFile})
	if err != nil {
		return false, err
	}
	return len(hits) > 0, nil
}
