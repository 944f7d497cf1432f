package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nkapoor/docuchat/internal/agent/tools"
	"github.com/nkapoor/docuchat/internal/config"
	"github.com/nkapoor/docuchat/internal/data/store"
	jobmodel "github.com/nkapoor/docuchat/internal/domain/jobModel"
	"github.com/nkapoor/docuchat/internal/handlers"
	"github.com/nkapoor/docuchat/internal/job"
	"github.com/nkapoor/docuchat/internal/middleware"
	"github.com/nkapoor/docuchat/internal/rag/embedding"
	"github.com/nkapoor/docuchat/internal/rag/embedding/googleEmbedding"
	"github.com/nkapoor/docuchat/internal/rag/embedding/openaiEmbedding"
	"github.com/nkapoor/docuchat/internal/rag/llm"
	"github.com/nkapoor/docuchat/internal/rag/llm/gemini"
	"github.com/nkapoor/docuchat/internal/rag/llm/openaiLLM"
	"github.com/nkapoor/docuchat/internal/rag/vectorDB"
	"github.com/nkapoor/docuchat/internal/rag/vectorDB/memoryDB"
	"github.com/nkapoor/docuchat/internal/rag/vectorDB/qdrantDB"
	"github.com/nkapoor/docuchat/internal/server"
	"github.com/nkapoor/docuchat/internal/worker"
	"github.com/nkapoor/docuchat/pkg/logger_i"
)

var (
	listenAddr        string
	configFile        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	logger_i.Init(config.IS_PROD, config.LOG_LEVEL_PROD)
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.StringVar(&configFile, "config", "", "optional yaml config file")
	flag.Parse()

	rt := config.LoadRuntime(configFile)
	middleware.Configure(rt)

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	chatProvider, agentProvider, embedder := buildProviders(serviceContext, rt, logger)
	if chatProvider == nil || agentProvider == nil || embedder == nil {
		logger.Error("Model gateway failed to initialize. Shutting down.",
			"LLMProvider", chatProvider != nil, "Embedder", embedder != nil)
		return
	}

	indexFactory := buildIndexFactory(serviceContext, rt, logger)
	if indexFactory == nil {
		logger.Error("Vector backend failed to initialize. Shutting down.")
		return
	}

	sessions := store.InitSessionStore(indexFactory, chatProvider, agentProvider, embedder, tools.DefaultRegistry())

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          store.GetRedisJobStore(serviceContext, rt.RedisAddr),
		Sessions:          sessions,
	}
	logger.Info("Starting job service")

	if serviceConfig.JobStore == nil {
		logger.Error("Redis job store is offline, using in-memory store")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
	}
	service := job.InitJobService(serviceConfig)

	handlers.InitJobHandler(service)

	//init worker pool
	worker.InitServices(service)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// buildProviders returns the chat provider, the agent provider and the
// embedder. Chat and agent share one gateway client but carry their own
// system instructions.
func buildProviders(ctx context.Context, rt config.Runtime, logger *logger_i.Logger) (llm.Provider, llm.Provider, embedding.Embedder) {
	switch rt.LLMProvider {
	case "openai":
		logger.Info("Using OpenAI model gateway", "model", config.OpenAIModelName)
		return openaiLLM.GetOpenAIClient(rt.OpenAIAPIKey, rt.OpenAIBaseURL, config.ModelContext),
			openaiLLM.GetOpenAIClient(rt.OpenAIAPIKey, rt.OpenAIBaseURL, config.AgentContext),
			openaiEmbedding.GetOpenAIEmbeddingClient(rt.OpenAIAPIKey, rt.OpenAIBaseURL)
	default:
		logger.Info("Using Gemini model gateway", "model", config.GeminiModelName)
		return gemini.GetGeminiClient(ctx, config.GeminiModelName, rt.GeminiAPIKey, config.ModelContext),
			gemini.GetGeminiClient(ctx, config.GeminiModelName, rt.GeminiAPIKey, config.AgentContext),
			googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, rt.GeminiAPIKey)
	}
}

func buildIndexFactory(ctx context.Context, rt config.Runtime, logger *logger_i.Logger) store.IndexFactory {
	if rt.VectorBackend == "qdrant" {
		client := qdrantDB.GetQuadrantClient(ctx, rt.QdrantHost, rt.QdrantPort)
		if client == nil {
			return nil
		}
		logger.Info("Using qdrant vector backend", "host", rt.QdrantHost)
		return func(sessionId string) vectorDB.Index {
			return qdrantDB.NewIndex(client, sessionId)
		}
	}

	logger.Info("Using in-memory vector backend")
	return func(sessionId string) vectorDB.Index {
		return memoryDB.NewIndex(int(config.EmbeddingOutputDimensionality))
	}
}
