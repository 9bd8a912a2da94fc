package chunker

import (
	"maps"
	"strings"

	"github.com/akolanti/PDFChat/internal/domain/commonModels"
	"github.com/tmc/langchaingo/textsplitter"
)

// Chunker splits page text into overlapping chunks. It holds no state between calls.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

func New(size int, overlap int) *Chunker {
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		),
	}
}

// Split returns chunks in page order. Chunk ids and source tags are left
// for the caller.
func (c *Chunker) Split(pages []commonModels.Page, meta map[string]any) ([]commonModels.Chunk, error) {
	chunks := make([]commonModels.Chunk, 0, len(pages))

	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		parts, err := c.splitter.SplitText(page.Text)
		if err != nil {
			return nil, err
		}
		for _, part := range parts {
			if strings.TrimSpace(part) == "" {
				continue
			}
			pageMeta := make(map[string]any, len(meta)+2)
			maps.Copy(pageMeta, meta)
			pageMeta[commonModels.MetaPage] = page.Number
			pageMeta[commonModels.MetaTotalPages] = totalPages(page, len(pages))

			chunks = append(chunks, commonModels.Chunk{
				Text:         part,
				PageMetadata: pageMeta,
			})
		}
	}
	return chunks, nil
}

func totalPages(page commonModels.Page, extracted int) int {
	if page.Total > 0 {
		return page.Total
	}
	return extracted
}
