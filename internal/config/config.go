package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking - generous overlap helps semantic continuity across windows
	ChunkSize    = 1000
	ChunkOverlap = 200

	//retrieval
	RetrievalTopK = 4
	SummaryTopK   = 3
	SummaryQuery  = "overview of content"

	//sources returned to the caller are previewed, not dumped wholesale
	SourcePreviewRunes = 200

	//agent
	AgentMaxIterations = 3

	EmbeddingOutputDimensionality int32 = 1536

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//per-operation deadlines - all external suspension points sit behind these
	IngestTimeout   = 120 * time.Second
	QueryTimeout    = 60 * time.Second
	ResearchTimeout = 90 * time.Second

	//vectorDB
	QdrantHost             = ""
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantCollectionPrefix = "docuchat-"

	//providers
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIModelName      = "gpt-4o-mini"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	ModelContext = "You are a helpful assistant that answers questions about an uploaded document. " +
		"Answer only from the provided context. If the context does not contain the answer, say you don't know."

	AgentContext = "You are a research assistant that answers questions by reasoning step by step " +
		"with the tools you are offered. Reply in exactly the format each prompt asks for."

	SummaryFallback = "Unable to generate summary at this time."

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""
	RedisJobStore = 0

	RedisJobStoreTTL = 24 * time.Hour

	//outbound http pooling
	MaxIdleConns        = 10
	MaxIdleConnsPerHost = 10
	IdleConnTimeout     = 90 * time.Second

	//cli polling
	StatusPollInterval = 500 * time.Millisecond
	StatusPollTimeout  = 3 * time.Minute
)
