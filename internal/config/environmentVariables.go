package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	ConfigFilePath = "config.json"

	//chunking
	ChunkSize    = 1000
	ChunkOverlap = 200

	//retrieval sizes
	RetrieveK     = 3
	DedupProbeK   = 1
	CatalogProbeK = 1000

	//embedding text used when listing files, embedders reject empty input
	CatalogProbeText = "document"

	NoContextPlaceholder = "No relevant context found."

	EmbeddingBatchSize      = 100
	EmbeddingCallsPerSecond = 5
	EmbeddingBurst          = 1

	EmbeddingOutputDimensionality int32 = 1536

	SourceFileKey = "source_file"
	ContentKey    = "content"

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	JobTimeout                      = 5 * time.Minute

	//serverTimeouts
	ReadTimeout            = 30 * time.Second
	WriteTimeout           = 6 * time.Minute
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	MaxUploadSize = 32 << 20 //32mb

	SessionCookieName = "chat_session"
	SessionHeaderName = "X-Session-Id"
	TraceHeaderName   = "X-Trace-Id"

	//vectorDB
	QdrantHost             = "localhost"
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantKeepAliveTime    = 30 * time.Second
	ChromemConcurrency     = 4

	//providers
	OpenAIEmbeddingModel = "text-embedding-3-small"
	OpenAIChatModel      = "gpt-4"
	GeminiModelName      = "gemini-2.5-flash"
	GoogleEmbeddingModel = "gemini-embedding-001"

	ModelTemperature float32 = 0

	SystemPrompt = "You are a helpful AI assistant. Use the chat history and retrieved document context to answer accurately. " +
		"Always maintain awareness of our previous conversation and refer back to previous topics when relevant. " +
		"If the user refers to something mentioned earlier, acknowledge it and build upon that context. " +
		"Consider both the immediate question and the broader context of our ongoing conversation."

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
	OutboundTimeout     = 2 * time.Minute

	//redis
	RedisAddr = "127.0.0.1:6379"

	//redis has 16 DB we can use
	RedisJobStore          = 0
	RedisConversationStore = 1

	//redis timeouts
	RedisJobStoreTTL      = 24 * time.Hour
	RedisConversationTTL  = 24 * time.Hour
	RedisDialTimeout      = 3 * time.Second
	RedisReadWriteTimeout = 30 * time.Second
)
