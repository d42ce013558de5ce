package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chronoboard/backend/internal/models"
	"github.com/chronoboard/backend/pkg/logger"
)

// Ingestor runs the extract -> summarize -> persist sequence for one
// document.
type Ingestor interface {
	ProcessDocument(ctx context.Context, doc *models.Document) error
}

// DocumentStore is the read slice of the document gateway handlers need.
type DocumentStore interface {
	GetDocument(ctx context.Context, id string) (*models.Document, error)
}

// WebhookHandler reacts to the datastore's new-row notification by
// summarizing the announced document synchronously.
type WebhookHandler struct {
	store    DocumentStore
	ingestor Ingestor
	logger   logger.Logger
}

func NewWebhookHandler(store DocumentStore, ingestor Ingestor, log logger.Logger) *WebhookHandler {
	return &WebhookHandler{store: store, ingestor: ingestor, logger: log}
}

type webhookRecord struct {
	ID        string  `json:"id"`
	Filename  string  `json:"filename"`
	ProjectID string  `json:"project_id"`
	DocType   string  `json:"doc_type"`
	Processed bool    `json:"processed"`
	Summary   *string `json:"summary"`
}

type webhookPayload struct {
	Record *webhookRecord `json:"record"`
}

// DocumentCreated handles POST /api/webhook/document_created.
func (h *WebhookHandler) DocumentCreated(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Record == nil || payload.Record.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "missing document record"})
		return
	}
	record := payload.Record

	// Duplicate notifications are no-ops, not errors.
	if record.Processed || record.Summary != nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Document already processed or has summary. Skipping.",
		})
		return
	}

	doc := &models.Document{
		ID:        record.ID,
		Filename:  record.Filename,
		ProjectID: record.ProjectID,
		DocType:   models.DocType(record.DocType),
	}

	// Notification payloads can be sparse; fill in from the store and
	// re-check the guard against current state.
	if doc.Filename == "" || doc.ProjectID == "" {
		stored, err := h.store.GetDocument(c.Request.Context(), record.ID)
		if err != nil {
			h.handleError(c, http.StatusInternalServerError, record.ID, err)
			return
		}
		if stored.Processed || stored.Summary != nil {
			c.JSON(http.StatusOK, gin.H{
				"message": "Document already processed or has summary. Skipping.",
			})
			return
		}
		doc = stored
	}

	if err := h.ingestor.ProcessDocument(c.Request.Context(), doc); err != nil {
		h.handleError(c, http.StatusInternalServerError, doc.ID, err)
		return
	}

	h.logger.Info("webhook document summarized",
		logger.String("document_id", doc.ID),
		logger.String("filename", doc.Filename),
	)
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Summary generated for %s", doc.Filename),
	})
}

func (h *WebhookHandler) handleError(c *gin.Context, status int, docID string, err error) {
	h.logger.Error("webhook processing failed",
		logger.String("document_id", docID),
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)
	c.JSON(status, gin.H{
		"detail": fmt.Sprintf("failed to process document: %v", err),
	})
}
