package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"medibot/internal/config"
	"medibot/internal/database/milvus"
	"medibot/internal/embedding"
	"medibot/internal/rag/embeddings"
	"medibot/internal/rag/interfaces"
	"medibot/internal/rag/loaders"
	"medibot/internal/rag/pipeline"
	"medibot/internal/rag/splitters"
	"medibot/internal/rag/storages/vectorstore"
	"medibot/pkg/logger"
)

// ingest builds the vector index from a directory of source documents.
// It is safe to run repeatedly: the collection is only created when absent
// and re-running simply appends the freshly loaded chunks.
func main() {
	logger.Init(logrus.InfoLevel)
	log := logger.New("ingest")

	_ = godotenv.Load()

	cfgPath := flag.String("config", "config/config.yaml", "path to the yaml config file")
	dataDir := flag.String("data", "", "directory of .pdf/.txt files (overrides config)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Warn(fmt.Sprintf("Could not load config file (%v), using defaults", err))
		cfg = config.Default()
	}
	if *dataDir != "" {
		cfg.Ingestion.DataDir = *dataDir
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Fatal("GEMINI_API_KEY is not set; cannot embed documents.")
	}

	ctx := context.Background()

	milvusClient, err := milvus.NewClient(ctx, &cfg.Milvus, os.Getenv("MILVUS_API_KEY"), log)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to connect to Milvus: %v", err))
	}
	defer milvusClient.Close()

	if err := milvusClient.EnsureCollection(ctx); err != nil {
		log.Fatal(fmt.Sprintf("Failed to ensure collection: %v", err))
	}

	embedder, err := embedding.NewGoogleModel(ctx, geminiKey, cfg.Embedding.Model)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to create embedding client: %v", err))
	}

	store, err := vectorstore.NewMilvusStore(milvusClient, log)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to create vector store: %v", err))
	}

	splitter, err := splitters.NewTokenSplitter(cfg.Ingestion.ChunkSize, cfg.Ingestion.ChunkOverlap)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to create splitter: %v", err))
	}

	indexing := pipeline.NewIndexingPipeline(
		splitter,
		embeddings.NewGenaiAdapter(embedder),
		store,
		cfg.Ingestion.BatchSize,
		log,
	)

	paths, err := collectSources(cfg.Ingestion.DataDir)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to scan data directory: %v", err))
	}
	if len(paths) == 0 {
		log.Warn(fmt.Sprintf("No .pdf or .txt files found under %s; nothing to do.", cfg.Ingestion.DataDir))
		return
	}
	log.Info(fmt.Sprintf("Indexing %d files from %s", len(paths), cfg.Ingestion.DataDir))

	start := time.Now()
	var total atomic.Int64

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for _, path := range paths {
		eg.Go(func() error {
			count, err := indexing.Run(gCtx, loaderFor(path), path)
			if err != nil {
				return err
			}
			total.Add(int64(count))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.Fatal(fmt.Sprintf("Indexing failed: %v", err))
	}

	log.Info(fmt.Sprintf("Indexed %d chunks from %d files in %s", total.Load(), len(paths), time.Since(start).Round(time.Second)))
}

// collectSources walks the data directory and returns every supported file.
func collectSources(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf", ".txt":
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func loaderFor(path string) interfaces.Loader {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return loaders.NewPdfLoader()
	}
	return loaders.NewTxtLoader()
}
