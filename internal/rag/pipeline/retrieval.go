package pipeline

import (
	"context"
	"fmt"
	"time"

	"medibot/internal/rag/interfaces"
	"medibot/internal/rag/schema"
	"medibot/pkg/logger"
)

// RetrievalPipeline orchestrates the process of retrieving relevant documents
// for a given query: embed the query, then search the vector store.
type RetrievalPipeline struct {
	embedder    interfaces.EmbeddingModel
	vectorStore interfaces.VectorStore
	topK        int
	timeout     time.Duration
	log         *logger.Logger
}

// NewRetrievalPipeline creates a new RetrievalPipeline. topK is the number of
// passages fetched per query; timeout bounds the embed plus search calls.
func NewRetrievalPipeline(
	embedder interfaces.EmbeddingModel,
	vectorStore interfaces.VectorStore,
	topK int,
	timeout time.Duration,
	log *logger.Logger,
) *RetrievalPipeline {
	return &RetrievalPipeline{
		embedder:    embedder,
		vectorStore: vectorStore,
		topK:        topK,
		timeout:     timeout,
		log:         log,
	}
}

// Run executes the retrieval pipeline. A hung external call is cut off by the
// configured timeout and reported as a retrieval error like any other failure.
func (p *RetrievalPipeline) Run(ctx context.Context, query string) ([]*schema.Document, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	queryEmbeddings, err := p.embedder.Embed(ctx, []string{query})
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to embed query: %v", err))
		return nil, &RetrievalError{Err: fmt.Errorf("failed to embed query: %w", err)}
	}
	if len(queryEmbeddings) == 0 {
		return nil, &RetrievalError{Err: fmt.Errorf("embedder returned no vector for query")}
	}

	retrievedDocs, err := p.vectorStore.Query(ctx, queryEmbeddings[0], p.topK)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to query vector store: %v", err))
		return nil, &RetrievalError{Err: err}
	}
	if len(retrievedDocs) == 0 {
		p.log.Info("No documents found in vector store for the given query.")
		return []*schema.Document{}, nil
	}

	p.log.Info(fmt.Sprintf("Retrieved %d documents from vector store", len(retrievedDocs)))
	return retrievedDocs, nil
}
