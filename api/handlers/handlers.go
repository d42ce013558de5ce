package handlers

import (
	"github.com/chronoboard/backend/pkg/logger"
)

type Handlers struct {
	Webhook   *WebhookHandler
	Summarize *SummarizeHandler
	Health    *HealthHandler
}

func NewHandlers(
	store DocumentStore,
	ingestor Ingestor,
	tasks TaskQueue,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Webhook:   NewWebhookHandler(store, ingestor, log),
		Summarize: NewSummarizeHandler(store, tasks, log),
		Health:    NewHealthHandler(),
	}
}
