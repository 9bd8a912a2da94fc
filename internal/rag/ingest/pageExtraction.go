package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/domain/commonModels"
	"github.com/akolanti/PDFChat/pkg/logger_i"
	"github.com/ledongthuc/pdf"
)

const pageExtractTimeout = 10 * time.Second

var errPageTimeout = errors.New("page extraction timed out")

// Loader turns a document on disk into page texts.
type Loader interface {
	Load(ctx context.Context, path string) ([]commonModels.Page, error)
}

type PDFLoader struct {
	logger *logger_i.Logger
}

func NewPDFLoader() *PDFLoader {
	return &PDFLoader{logger: logger_i.NewLogger("PDF Loader")}
}

func (l *PDFLoader) Load(ctx context.Context, path string) (pages []commonModels.Page, err error) {
	log := l.logger.FromContext(ctx).With("path", path)

	// the parser panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			log.Error("PDF parser panicked", "panic", r)
			pages = nil
			err = appErrors.New(appErrors.KindUpstream, "pdf.Load", "Could not read PDF file", fmt.Errorf("%v", r))
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		log.Error("failed opening of pdf file", "error", err)
		return nil, appErrors.New(appErrors.KindUpstream, "pdf.Load", "Could not read PDF file", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	log.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(ctx, page)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, appErrors.Upstream("pdf.Load", err)
		}
		if err != nil {
			// keep going, one bad page should not sink the document
			log.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, commonModels.Page{
			Number: i,
			Total:  numPages,
			Text:   strings.ToValidUTF8(content, ""),
		})
	}
	return pages, nil
}

func protectExtract(ctx context.Context, page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page extraction panicked: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(pageExtractTimeout):
		return "", errPageTimeout
	}
}
