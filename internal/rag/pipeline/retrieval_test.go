package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"medibot/internal/rag/schema"
	"medibot/pkg/logger"
)

type fakeEmbedder struct {
	calls   int
	vectors [][]float32
	err     error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

type fakeVectorStore struct {
	calls    int
	lastTopK int
	docs     []*schema.Document
	err      error
}

func (f *fakeVectorStore) Add(ctx context.Context, docs []*schema.Document) error {
	return nil
}

func (f *fakeVectorStore) Query(ctx context.Context, embedding []float32, topK int) ([]*schema.Document, error) {
	f.calls++
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func testLogger() *logger.Logger {
	return logger.New("test")
}

func scoredDoc(id, text string, score float32) *schema.Document {
	return &schema.Document{
		ID:   id,
		Text: text,
		Metadata: map[string]interface{}{
			schema.MetadataKeyScore: score,
		},
	}
}

func TestRetrievalPipeline_ReturnsDocsInScoreOrder(t *testing.T) {
	embedder := &fakeEmbedder{vectors: [][]float32{{0.1, 0.2}}}
	store := &fakeVectorStore{docs: []*schema.Document{
		scoredDoc("a", "first", 0.95),
		scoredDoc("b", "second", 0.82),
		scoredDoc("c", "third", 0.40),
	}}
	p := NewRetrievalPipeline(embedder, store, 3, time.Second, testLogger())

	docs, err := p.Run(context.Background(), "what is aspirin")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(docs))
	}
	if store.lastTopK != 3 {
		t.Errorf("Expected topK 3 to be passed to the store, got %d", store.lastTopK)
	}

	var prev float32 = 2
	for i, doc := range docs {
		score, ok := doc.Metadata[schema.MetadataKeyScore].(float32)
		if !ok {
			t.Fatalf("Document %d has no score metadata", i)
		}
		if score > prev {
			t.Errorf("Documents not in non-increasing score order at index %d: %f > %f", i, score, prev)
		}
		prev = score
	}
}

func TestRetrievalPipeline_EmbedFailureIsRetrievalError(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	store := &fakeVectorStore{}
	p := NewRetrievalPipeline(embedder, store, 5, time.Second, testLogger())

	_, err := p.Run(context.Background(), "question")
	var retrievalErr *RetrievalError
	if !errors.As(err, &retrievalErr) {
		t.Fatalf("Expected RetrievalError, got %v", err)
	}
	if store.calls != 0 {
		t.Errorf("Vector store should not be queried after embed failure, got %d calls", store.calls)
	}
}

func TestRetrievalPipeline_StoreFailureIsRetrievalError(t *testing.T) {
	embedder := &fakeEmbedder{vectors: [][]float32{{0.1}}}
	store := &fakeVectorStore{err: errors.New("connection refused")}
	p := NewRetrievalPipeline(embedder, store, 5, time.Second, testLogger())

	_, err := p.Run(context.Background(), "question")
	var retrievalErr *RetrievalError
	if !errors.As(err, &retrievalErr) {
		t.Fatalf("Expected RetrievalError, got %v", err)
	}
}

func TestRetrievalPipeline_EmptyIndexReturnsEmptySlice(t *testing.T) {
	embedder := &fakeEmbedder{vectors: [][]float32{{0.1}}}
	store := &fakeVectorStore{docs: nil}
	p := NewRetrievalPipeline(embedder, store, 5, time.Second, testLogger())

	docs, err := p.Run(context.Background(), "question")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if docs == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(docs) != 0 {
		t.Fatalf("Expected no documents, got %d", len(docs))
	}
}
