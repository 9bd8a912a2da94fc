package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/domain/commonModels"
	"github.com/akolanti/PDFChat/internal/metrics"
	"github.com/google/uuid"
)

func (p *Pipeline) prepareChunks(pages []commonModels.Page, sourceFile string, filePath string) ([]commonModels.Chunk, error) {
	chunks, err := p.chunker.Split(pages, map[string]any{commonModels.MetaSource: filePath})
	if err != nil {
		return nil, appErrors.Internal("chunker.Split", err)
	}

	for i := range chunks {
		chunks[i].SourceFile = sourceFile
		// stable ids keep a re-upsert of the same file idempotent
		chunks[i].Id = uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "%s#%d", sourceFile, i)).String()
	}
	return chunks, nil
}

// embedBatches embeds chunk texts in fixed size batches, paced by the limiter.
func (p *Pipeline) embedBatches(ctx context.Context, chunks []commonModels.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))

	for i := 0; i < len(chunks); i += config.EmbeddingBatchSize {
		end := min(i+config.EmbeddingBatchSize, len(chunks))

		if err := p.limiter.Wait(ctx); err != nil {
			return nil, appErrors.Upstream("embedding.wait", err)
		}

		texts := make([]string, 0, end-i)
		for _, c := range chunks[i:end] {
			texts = append(texts, c.Text)
		}

		start := time.Now()
		batch, err := p.embedder.BatchEmbedding(ctx, texts)
		metrics.CaptureExecutionMetrics("embedding", time.Since(start))
		if err != nil {
			return nil, err
		}
		if len(batch) != len(texts) {
			return nil, appErrors.Upstream("embedding.batch", fmt.Errorf("expected %d vectors, got %d", len(texts), len(batch)))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
