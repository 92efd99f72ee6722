package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"medibot/pkg/logger"
)

// SetupRouter configures and returns a gin engine with the chat API routes.
// The recovery middleware converts panics into a generic internal error so
// no stack trace ever reaches the caller.
func SetupRouter(h *Handler, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error(fmt.Sprintf("Panic recovered: %v", recovered))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))
	r.Use(CORSMiddleware())

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/chat", h.Chat)
		api.POST("/clear", h.Clear)
	}

	return r
}
