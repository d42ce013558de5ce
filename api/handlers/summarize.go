package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chronoboard/backend/internal/pipeline"
	"github.com/chronoboard/backend/internal/store"
	"github.com/chronoboard/backend/pkg/logger"
	"github.com/chronoboard/backend/pkg/queue"
)

// TaskQueue publishes ingestion tasks and serves the last sweep report.
type TaskQueue interface {
	EnqueueSweep(ctx context.Context) error
	EnqueueDocument(ctx context.Context, documentID string) error
	LastReport(ctx context.Context) (*pipeline.Report, error)
}

// SummarizeHandler exposes the authenticated ingestion triggers. Work is
// handed to the queue so HTTP callers never block on extraction or the
// model call.
type SummarizeHandler struct {
	store  DocumentStore
	tasks  TaskQueue
	logger logger.Logger
}

func NewSummarizeHandler(docs DocumentStore, tasks TaskQueue, log logger.Logger) *SummarizeHandler {
	return &SummarizeHandler{store: docs, tasks: tasks, logger: log}
}

type summarizeRequest struct {
	DocID string `json:"doc_id"`
}

// SummarizeDocument handles POST /api/summarize, the endpoint the
// new-document trigger calls with {"doc_id": ...}.
func (h *SummarizeHandler) SummarizeDocument(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DocID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "doc_id is required"})
		return
	}

	doc, err := h.store.GetDocument(c.Request.Context(), req.DocID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "document not found"})
		return
	}
	if err != nil {
		h.handleError(c, "failed to load document", err)
		return
	}

	if doc.Processed || doc.Summary != nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Document already processed or has summary. Skipping.",
		})
		return
	}

	if err := h.tasks.EnqueueDocument(c.Request.Context(), doc.ID); err != nil {
		h.handleError(c, "failed to queue document", err)
		return
	}

	h.logger.Info("document queued for summarization",
		logger.String("document_id", doc.ID),
		logger.String("user_id", c.GetString("user_id")),
	)
	c.JSON(http.StatusAccepted, gin.H{"message": "document queued for summarization"})
}

// RunSweep handles POST /api/summarize/run, queuing a batch pass over all
// eligible documents.
func (h *SummarizeHandler) RunSweep(c *gin.Context) {
	if err := h.tasks.EnqueueSweep(c.Request.Context()); err != nil {
		h.handleError(c, "failed to queue sweep", err)
		return
	}

	h.logger.Info("ingestion sweep queued",
		logger.String("user_id", c.GetString("user_id")),
	)
	c.JSON(http.StatusAccepted, gin.H{"message": "ingestion sweep queued"})
}

// SweepReport handles GET /api/summarize/report.
func (h *SummarizeHandler) SweepReport(c *gin.Context) {
	report, err := h.tasks.LastReport(c.Request.Context())
	if errors.Is(err, queue.ErrNoReport) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "no sweep report available"})
		return
	}
	if err != nil {
		h.handleError(c, "failed to load sweep report", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *SummarizeHandler) handleError(c *gin.Context, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": message})
}
