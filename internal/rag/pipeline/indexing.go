package pipeline

import (
	"context"
	"fmt"

	"medibot/internal/rag/interfaces"
	"medibot/pkg/logger"
)

// IndexingPipeline orchestrates the process of loading, splitting, embedding
// and storing documents during the one-time index build.
type IndexingPipeline struct {
	splitter    interfaces.Splitter
	embedder    interfaces.EmbeddingModel
	vectorStore interfaces.VectorStore
	batchSize   int
	log         *logger.Logger
}

// NewIndexingPipeline creates a new IndexingPipeline. batchSize caps the
// number of chunks embedded per API call.
func NewIndexingPipeline(
	splitter interfaces.Splitter,
	embedder interfaces.EmbeddingModel,
	vectorStore interfaces.VectorStore,
	batchSize int,
	log *logger.Logger,
) *IndexingPipeline {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &IndexingPipeline{
		splitter:    splitter,
		embedder:    embedder,
		vectorStore: vectorStore,
		batchSize:   batchSize,
		log:         log,
	}
}

// Run executes the indexing pipeline for a single source file and returns the
// number of chunks written to the index.
func (p *IndexingPipeline) Run(ctx context.Context, loader interfaces.Loader, path string) (int, error) {
	p.log.Info(fmt.Sprintf("Starting indexing for path: %s", path))

	initialDocs, err := loader.Load(ctx, path)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to load data: %v", err))
		return 0, fmt.Errorf("failed to load %s: %w", path, err)
	}

	chunks, err := p.splitter.Split(ctx, initialDocs)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to split documents: %v", err))
		return 0, fmt.Errorf("failed to split %s: %w", path, err)
	}
	p.log.Info(fmt.Sprintf("Split %s into %d chunks", path, len(chunks)))

	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}
		embeddings, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			p.log.Error(fmt.Sprintf("Failed to embed chunks: %v", err))
			return 0, fmt.Errorf("failed to embed chunks of %s: %w", path, err)
		}
		if len(embeddings) != len(batch) {
			return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(batch))
		}
		for i, chunk := range batch {
			chunk.Embedding = embeddings[i]
		}

		if err := p.vectorStore.Add(ctx, batch); err != nil {
			p.log.Error(fmt.Sprintf("Failed to add chunks to VectorStore: %v", err))
			return 0, fmt.Errorf("failed to store chunks of %s: %w", path, err)
		}
	}

	p.log.Info(fmt.Sprintf("Successfully finished indexing for: %s", path))
	return len(chunks), nil
}
