package rag

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/PDFChat/internal/domain/chatModel"
	"github.com/akolanti/PDFChat/internal/metrics"
	"github.com/akolanti/PDFChat/internal/rag/embedding"
	"github.com/akolanti/PDFChat/internal/rag/ingest"
	"github.com/akolanti/PDFChat/internal/rag/llm"
	"github.com/akolanti/PDFChat/internal/rag/vectorDB"
	"github.com/akolanti/PDFChat/pkg/logger_i"
)

/*
Service is the only thing the worker pool and the HTTP layer see.
The private service struct holds the store, model clients and the
conversation memory, so tests swap them through Deps without touching callers.
*/
type Service interface {
	Ingest(ctx context.Context, path string) (ingest.Result, error)
	Answer(ctx context.Context, sessionId string, question string) (Answer, error)
	ListFiles(ctx context.Context) ([]string, error)
	DeleteFile(ctx context.Context, name string) error
	ResetConversation(ctx context.Context, sessionId string) error
}

// Ingester is satisfied by *ingest.Pipeline.
type Ingester interface {
	Ingest(ctx context.Context, path string) (ingest.Result, error)
}

type Deps struct {
	Store         vectorDB.Store
	Embedder      embedding.Embedder
	LLM           llm.Provider
	Conversations chatModel.ConversationStore
	Ingester      Ingester
	UploadFolder  string
}

type service struct {
	ingester      Ingester
	generator     *Generator
	catalog       *Catalog
	conversations chatModel.ConversationStore
	logger        *logger_i.Logger
}

func NewService(deps Deps) (Service, error) {
	if deps.Store == nil || deps.Embedder == nil || deps.LLM == nil || deps.Conversations == nil || deps.Ingester == nil {
		return nil, errors.New("rag service: missing dependency")
	}
	retriever := NewRetriever(deps.Embedder, deps.Store)
	return &service{
		ingester:      deps.Ingester,
		generator:     NewGenerator(retriever, deps.LLM, deps.Conversations),
		catalog:       NewCatalog(deps.Embedder, deps.Store, deps.UploadFolder),
		conversations: deps.Conversations,
		logger:        logger_i.NewLogger("RAG Service"),
	}, nil
}

func (s *service) Ingest(ctx context.Context, path string) (ingest.Result, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	res, err := s.ingester.Ingest(ctx, path)
	if err != nil {
		s.logger.FromContext(ctx).Error("INGESTION_FAILURE", "path", path, "error", err)
	}
	return res, err
}

func (s *service) Answer(ctx context.Context, sessionId string, question string) (Answer, error) {
	return s.generator.Answer(ctx, sessionId, question)
}

func (s *service) ListFiles(ctx context.Context) ([]string, error) {
	return s.catalog.ListFiles(ctx)
}

func (s *service) DeleteFile(ctx context.Context, name string) error {
	return s.catalog.DeleteFile(ctx, name)
}

func (s *service) ResetConversation(ctx context.Context, sessionId string) error {
	s.logger.FromContext(ctx).Info("Resetting conversation", "sessionId", sessionId)
	return s.conversations.Reset(ctx, sessionId)
}
