package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medibot/internal/rag/pipeline"
	"medibot/pkg/logger"
)

// ErrEmptyQuery is returned when the trimmed query text is empty. The request
// is rejected before any external call is made.
var ErrEmptyQuery = errors.New("empty message")

// Service wires the retrieval and QA pipelines into the per-request chat
// flow. It holds no request state and is safe for concurrent use.
type Service struct {
	log       *logger.Logger
	retrieval *pipeline.RetrievalPipeline
	qa        *pipeline.QAPipeline
}

// New creates a Service over already-constructed pipelines.
func New(log *logger.Logger, retrieval *pipeline.RetrievalPipeline, qa *pipeline.QAPipeline) *Service {
	return &Service{
		log:       log,
		retrieval: retrieval,
		qa:        qa,
	}
}

// Chat answers a single user message: validate, retrieve, generate, extract.
// The returned answer is never empty on success.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	query := strings.TrimSpace(message)
	if query == "" {
		return "", ErrEmptyQuery
	}

	s.log.Info(fmt.Sprintf("Received chat query: %q", query))

	docs, err := s.retrieval.Run(ctx, query)
	if err != nil {
		return "", err
	}

	answer, err := s.qa.Run(ctx, query, docs)
	if err != nil {
		return "", err
	}

	return answer, nil
}
