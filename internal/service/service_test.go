package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"medibot/internal/rag/pipeline"
	"medibot/internal/rag/schema"
	"medibot/pkg/logger"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return [][]float32{{0.1, 0.2}}, nil
}

type fakeVectorStore struct {
	calls int
	docs  []*schema.Document
	err   error
}

func (f *fakeVectorStore) Add(ctx context.Context, docs []*schema.Document) error {
	return nil
}

func (f *fakeVectorStore) Query(ctx context.Context, embedding []float32, topK int) ([]*schema.Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

type fakeLLM struct {
	calls  int
	output *schema.Output
	err    error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt schema.Prompt) (*schema.Output, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

type fixture struct {
	embedder *fakeEmbedder
	store    *fakeVectorStore
	llm      *fakeLLM
	svc      *Service
}

func newFixture(embedder *fakeEmbedder, store *fakeVectorStore, llm *fakeLLM) *fixture {
	log := logger.New("test")
	counter := func(text string) int { return len(text) }
	retrieval := pipeline.NewRetrievalPipeline(embedder, store, 5, time.Second, log)
	qa := pipeline.NewQAPipeline(llm, counter, 0, time.Second, log)
	return &fixture{
		embedder: embedder,
		store:    store,
		llm:      llm,
		svc:      New(log, retrieval, qa),
	}
}

func TestChat_EmptyMessageRejectedBeforeAnyCall(t *testing.T) {
	for _, message := range []string{"", "   ", "\n\t "} {
		f := newFixture(&fakeEmbedder{}, &fakeVectorStore{}, &fakeLLM{})

		_, err := f.svc.Chat(context.Background(), message)
		if !errors.Is(err, ErrEmptyQuery) {
			t.Fatalf("Chat(%q) error = %v, want ErrEmptyQuery", message, err)
		}
		if f.embedder.calls != 0 {
			t.Errorf("Embedder was called %d times for empty input", f.embedder.calls)
		}
		if f.store.calls != 0 {
			t.Errorf("Vector store was called %d times for empty input", f.store.calls)
		}
		if f.llm.calls != 0 {
			t.Errorf("Generator was called %d times for empty input", f.llm.calls)
		}
	}
}

func TestChat_RetrievalFailureSkipsGenerator(t *testing.T) {
	f := newFixture(
		&fakeEmbedder{},
		&fakeVectorStore{err: errors.New("index unreachable")},
		&fakeLLM{},
	)

	_, err := f.svc.Chat(context.Background(), "what is aspirin")
	var retrievalErr *pipeline.RetrievalError
	if !errors.As(err, &retrievalErr) {
		t.Fatalf("Expected RetrievalError, got %v", err)
	}
	if f.llm.calls != 0 {
		t.Errorf("Generator must not run after a retrieval failure, got %d calls", f.llm.calls)
	}
}

func TestChat_GenerationFailure(t *testing.T) {
	f := newFixture(
		&fakeEmbedder{},
		&fakeVectorStore{docs: []*schema.Document{{Text: "context"}}},
		&fakeLLM{err: errors.New("model overloaded")},
	)

	_, err := f.svc.Chat(context.Background(), "what is aspirin")
	var generationErr *pipeline.GenerationError
	if !errors.As(err, &generationErr) {
		t.Fatalf("Expected GenerationError, got %v", err)
	}
}

func TestChat_AnswerIsNeverEmpty(t *testing.T) {
	for _, output := range []*schema.Output{
		{Text: "Aspirin relieves pain."},
		{Fields: map[string]string{"answer": "Aspirin relieves pain."}},
		{Fields: map[string]string{}},
		{Text: ""},
	} {
		f := newFixture(
			&fakeEmbedder{},
			&fakeVectorStore{docs: []*schema.Document{{Text: "context"}}},
			&fakeLLM{output: output},
		)

		answer, err := f.svc.Chat(context.Background(), "what is aspirin")
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if strings.TrimSpace(answer) == "" {
			t.Errorf("Chat() returned an empty answer for output %+v", output)
		}
	}
}

func TestChat_FallbackEchoesQuery(t *testing.T) {
	f := newFixture(
		&fakeEmbedder{},
		&fakeVectorStore{docs: []*schema.Document{{Text: "context"}}},
		&fakeLLM{output: &schema.Output{Fields: map[string]string{}}},
	)

	answer, err := f.svc.Chat(context.Background(), "  what is aspirin  ")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if answer != "(No answer generated) You asked: what is aspirin" {
		t.Errorf("Unexpected fallback answer: %q", answer)
	}
}
