package embeddings

import (
	"context"

	"medibot/internal/embedding"
	"medibot/internal/rag/interfaces"
)

// GenaiAdapter adapts the GoogleModel embedding client to the generic
// EmbeddingModel interface used by the pipelines.
type GenaiAdapter struct {
	client *embedding.GoogleModel
}

// NewGenaiAdapter creates a new adapter for the GoogleModel.
func NewGenaiAdapter(client *embedding.GoogleModel) *GenaiAdapter {
	return &GenaiAdapter{client: client}
}

// Embed calls the underlying client's EmbedBatch method to satisfy the
// EmbeddingModel interface.
func (a *GenaiAdapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return a.client.EmbedBatch(ctx, texts)
}

// compile-time check to ensure GenaiAdapter implements the EmbeddingModel interface
var _ interfaces.EmbeddingModel = (*GenaiAdapter)(nil)
