package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medibot/internal/rag/pipeline"
	"medibot/internal/service"
	"medibot/pkg/logger"
)

// ChatService is the part of the service the HTTP boundary depends on.
type ChatService interface {
	Chat(ctx context.Context, message string) (string, error)
}

// Handler holds the HTTP handlers for the chat API. svc is nil when the
// pipeline could not be initialized at startup; every chat request is then
// answered as unavailable while /health keeps working.
type Handler struct {
	svc ChatService
	log *logger.Logger
}

// NewHandler creates a Handler. Pass a nil svc to serve in degraded mode.
func NewHandler(svc ChatService, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(c *gin.Context) {
	if h.svc == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "retrieval chain not initialized"})
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.svc.Chat(c.Request.Context(), req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": answer})
}

// respondError maps pipeline error kinds to transport responses. Anything
// unanticipated becomes a generic internal error; the detail goes to the log,
// never to the caller.
func (h *Handler) respondError(c *gin.Context, err error) {
	var retrievalErr *pipeline.RetrievalError
	var generationErr *pipeline.GenerationError

	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty message"})
	case errors.As(err, &retrievalErr):
		h.log.Error(fmt.Sprintf("Retrieval failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case errors.As(err, &generationErr):
		h.log.Error(fmt.Sprintf("Generation failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		h.log.Error(fmt.Sprintf("Unhandled error in /api/chat: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// Health handles GET /health. It reports ok unconditionally, independent of
// pipeline health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Clear handles POST /api/clear. There is no session state to clear; the
// endpoint exists for client compatibility.
func (h *Handler) Clear(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
