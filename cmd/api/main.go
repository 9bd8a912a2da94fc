// @title           PDF Chat API
// @version         1.0
// @description     Upload PDFs and chat with them through retrieval augmented generation
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/data/store"
	"github.com/akolanti/PDFChat/internal/domain/chatModel"
	"github.com/akolanti/PDFChat/internal/domain/jobModel"
	"github.com/akolanti/PDFChat/internal/handlers"
	"github.com/akolanti/PDFChat/internal/job"
	"github.com/akolanti/PDFChat/internal/mcpServer"
	"github.com/akolanti/PDFChat/internal/rag"
	"github.com/akolanti/PDFChat/internal/rag/chunker"
	"github.com/akolanti/PDFChat/internal/rag/embedding"
	"github.com/akolanti/PDFChat/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/PDFChat/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/PDFChat/internal/rag/ingest"
	"github.com/akolanti/PDFChat/internal/rag/llm"
	"github.com/akolanti/PDFChat/internal/rag/llm/gemini"
	"github.com/akolanti/PDFChat/internal/rag/llm/openaiLLM"
	"github.com/akolanti/PDFChat/internal/rag/vectorDB"
	"github.com/akolanti/PDFChat/internal/rag/vectorDB/chromemDB"
	"github.com/akolanti/PDFChat/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/PDFChat/internal/server"
	"github.com/akolanti/PDFChat/internal/worker"
	"github.com/akolanti/PDFChat/pkg/logger_i"
	"github.com/joho/godotenv"
)

var (
	listenAddr string
	configPath string
)

func main() {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address")
	flag.StringVar(&configPath, "config", config.ConfigFilePath, "path to the config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	logger_i.Init(cfg.Log.SlogLevel(), cfg.Log.JSON)
	var logger = logger_i.NewLogger("main")
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr == "" {
		listenAddr = cfg.ListenAddr
	}

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	jobStore, conversations := initStores(serviceContext, cfg, logger)

	vectorStore, err := initVectorStore(serviceContext, cfg)
	if err != nil {
		logger.Error("Vector store failed to initialize. Shutting down.", "provider", cfg.VectorStore.Provider, "error", err)
		os.Exit(1)
	}
	embedder, err := initEmbedder(serviceContext, cfg)
	if err != nil {
		logger.Error("Embedding service failed to initialize. Shutting down.", "provider", cfg.Embedding.Provider, "error", err)
		os.Exit(1)
	}
	llmProvider, err := initLLM(serviceContext, cfg)
	if err != nil {
		logger.Error("LLM provider failed to initialize. Shutting down.", "provider", cfg.LLM.Provider, "error", err)
		os.Exit(1)
	}

	pipeline := ingest.NewPipeline(ingest.NewPDFLoader(), chunker.New(config.ChunkSize, config.ChunkOverlap), embedder, vectorStore)
	ragService, err := rag.NewService(rag.Deps{
		Store:         vectorStore,
		Embedder:      embedder,
		LLM:           llmProvider,
		Conversations: conversations,
		Ingester:      pipeline,
		UploadFolder:  cfg.UploadFolder,
	})
	if err != nil {
		logger.Error("Could not build the rag service", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting job service")
	jobService := job.InitJobService(jobStore)

	pool := worker.NewPool(worker.DefaultPoolConfig(), jobService, ragService)
	pool.Start()

	requestHandler, err := handlers.NewRequestHandler(jobService, pool, ragService, cfg.UploadFolder)
	if err != nil {
		logger.Error("Could not load the chat page", "error", err)
		os.Exit(1)
	}
	mcpHandler := mcpServer.NewHandler(mcpServer.NewServer(jobService, pool, ragService))
	router := server.NewRouter(requestHandler, mcpHandler)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		Workers:          pool,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, router)

	<-stopExecution
	logger.Info("Server stopped")
}

// initStores prefers redis and falls back to process memory when it is
// disabled or unreachable.
func initStores(ctx context.Context, cfg config.AppConfig, logger *logger_i.Logger) (jobModel.JobStore, chatModel.ConversationStore) {
	if cfg.Redis.Disabled {
		logger.Info("Redis disabled, using in memory stores")
		return store.InitInMemoryJobStore(), store.InitInMemoryConversationStore()
	}

	jobStore, jobErr := store.GetRedisJobStore(ctx, cfg.Redis)
	conversations, convErr := store.GetRedisConversationStore(ctx, cfg.Redis)
	if err := errors.Join(jobErr, convErr); err != nil {
		logger.Error("Redis stores are offline", "error", err)
		return store.InitInMemoryJobStore(), store.InitInMemoryConversationStore()
	}
	return jobStore, conversations
}

func initVectorStore(ctx context.Context, cfg config.AppConfig) (vectorDB.Store, error) {
	var (
		vs  vectorDB.Store
		err error
	)
	switch cfg.VectorStore.Provider {
	case config.VectorStoreChromem:
		vs, err = chromemDB.NewChromemStore(cfg.VectorStore.Chromem, cfg.IndexName)
	default:
		vs, err = qdrantDB.NewQdrantStore(ctx, cfg.VectorStore.Qdrant, cfg.IndexName, cfg.Embedding.Dimension)
	}
	if err != nil {
		return nil, err
	}
	if err := vs.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return vs, nil
}

func initEmbedder(ctx context.Context, cfg config.AppConfig) (embedding.Embedder, error) {
	if cfg.Embedding.Provider == config.ProviderGoogle {
		return googleEmbedding.NewGoogleEmbedder(ctx, cfg.Embedding.Model, cfg.Google.APIKey, cfg.Embedding.Dimension)
	}
	return openaiEmbedding.NewOpenAIEmbedder(cfg.OpenAI, cfg.Embedding.Model)
}

func initLLM(ctx context.Context, cfg config.AppConfig) (llm.Provider, error) {
	if cfg.LLM.Provider == config.ProviderGoogle {
		return gemini.NewGeminiClient(ctx, cfg.Google.APIKey, cfg.LLM.Model, cfg.LLM.Temperature)
	}
	return openaiLLM.NewOpenAIClient(cfg.OpenAI, cfg.LLM.Model, cfg.LLM.Temperature)
}
