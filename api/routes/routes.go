package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/chronoboard/backend/api/handlers"
	"github.com/chronoboard/backend/api/middleware"
	"github.com/chronoboard/backend/pkg/auth"
	"github.com/chronoboard/backend/pkg/logger"
)

// SetupRoutes registers all endpoints. The webhook stays outside the auth
// gate; the notification source authenticates out of band. Everything that
// a user can trigger goes through it.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, verifier *auth.Verifier, log logger.Logger) {
	r.Use(middleware.CORS())
	r.Use(middleware.Correlation())

	r.GET("/", h.Health.Root)
	r.GET("/health", h.Health.Health)

	api := r.Group("/api")

	api.POST("/webhook/document_created", h.Webhook.DocumentCreated)

	protected := api.Group("/summarize")
	protected.Use(middleware.Auth(verifier, log))
	{
		protected.POST("", h.Summarize.SummarizeDocument)
		protected.POST("/run", h.Summarize.RunSweep)
		protected.GET("/report", h.Summarize.SweepReport)
	}
}
