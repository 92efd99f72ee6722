package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"medibot/internal/api"
	"medibot/internal/config"
	"medibot/internal/database/milvus"
	"medibot/internal/embedding"
	"medibot/internal/llm"
	"medibot/internal/rag/embeddings"
	"medibot/internal/rag/llms"
	"medibot/internal/rag/pipeline"
	"medibot/internal/rag/storages/vectorstore"
	"medibot/internal/service"
	"medibot/pkg/logger"
)

func main() {
	logger.Init(logrus.InfoLevel)
	appLogger := logger.New("medibot")
	appLogger.Info("Starting medibot service...")

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config/config.yaml", "path to the yaml config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		appLogger.Warn(fmt.Sprintf("Could not load config file (%v), using defaults", err))
		cfg = config.Default()
	}

	// A failed pipeline setup degrades the service instead of stopping it:
	// /health stays up and every chat request is answered as unavailable.
	svc := buildService(context.Background(), cfg, appLogger)

	var chatSvc api.ChatService
	if svc != nil {
		chatSvc = svc
		appLogger.Info("RAG pipeline initialized successfully.")
	} else {
		appLogger.Warn("RAG pipeline is not initialized; serving in degraded mode.")
	}

	handler := api.NewHandler(chatSvc, appLogger)
	router := api.SetupRouter(handler, appLogger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(fmt.Sprintf("Failed to serve HTTP: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("Server shutdown failed: %v", err))
	}
	appLogger.Info("Server gracefully stopped")
}

// buildService wires the full pipeline. Any missing secret or unreachable
// collaborator is logged as a warning and yields a nil service: a startup
// configuration problem must not crash the process.
func buildService(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) *service.Service {
	geminiKey := os.Getenv("GEMINI_API_KEY")
	groqKey := os.Getenv("GROQ_API_KEY")
	if geminiKey == "" || groqKey == "" {
		log.Warn("Missing GEMINI_API_KEY or GROQ_API_KEY in environment. Check .env file.")
		return nil
	}

	milvusClient, err := milvus.NewClient(ctx, &cfg.Milvus, os.Getenv("MILVUS_API_KEY"), log)
	if err != nil {
		log.Warn(fmt.Sprintf("Failed to connect to Milvus: %v", err))
		return nil
	}

	// The index must have been built with the same embedding dimension the
	// service is configured for; a mismatch is a fatal configuration error.
	dim, err := milvusClient.Dim(ctx)
	if err != nil {
		log.Warn(fmt.Sprintf("Failed to inspect collection %s: %v", cfg.Milvus.Collection, err))
		return nil
	}
	if dim != cfg.Milvus.Dim {
		log.Warn(fmt.Sprintf("Embedding dimension mismatch: collection has %d, config expects %d", dim, cfg.Milvus.Dim))
		return nil
	}
	if err := milvusClient.EnsureCollection(ctx); err != nil {
		log.Warn(fmt.Sprintf("Failed to load collection %s: %v", cfg.Milvus.Collection, err))
		return nil
	}

	embedder, err := embedding.NewGoogleModel(ctx, geminiKey, cfg.Embedding.Model)
	if err != nil {
		log.Warn(fmt.Sprintf("Failed to create embedding client: %v", err))
		return nil
	}

	store, err := vectorstore.NewMilvusStore(milvusClient, log)
	if err != nil {
		log.Warn(fmt.Sprintf("Failed to create vector store: %v", err))
		return nil
	}

	counter, err := pipeline.NewTiktokenCounter()
	if err != nil {
		log.Warn(fmt.Sprintf("Failed to initialize tokenizer: %v", err))
		return nil
	}

	groqClient := llm.NewGroq(groqKey, cfg.Generation.BaseURL, cfg.Generation.Model)

	retrieval := pipeline.NewRetrievalPipeline(
		embeddings.NewGenaiAdapter(embedder),
		store,
		cfg.Retrieval.TopK,
		time.Duration(cfg.Retrieval.TimeoutSecs)*time.Second,
		log,
	)
	qa := pipeline.NewQAPipeline(
		llms.NewGroqAdapter(groqClient),
		counter,
		cfg.Generation.MaxContextTokens,
		time.Duration(cfg.Generation.TimeoutSecs)*time.Second,
		log,
	)

	return service.New(log, retrieval, qa)
}
