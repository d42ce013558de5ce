package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/chronoboard/backend/internal/models"
	"github.com/chronoboard/backend/internal/pipeline"
	"github.com/chronoboard/backend/pkg/logger"
	"github.com/chronoboard/backend/pkg/queue"
)

// Runner is the slice of the ingestion pipeline the worker drives.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
	ProcessDocument(ctx context.Context, doc *models.Document) error
}

// DocumentGetter loads a document row for single-document tasks.
type DocumentGetter interface {
	GetDocument(ctx context.Context, id string) (*models.Document, error)
}

// ReportSaver persists sweep reports for the API to serve.
type ReportSaver interface {
	SaveReport(ctx context.Context, report *pipeline.Report) error
}

// IngestWorker consumes change events (sweep and single-document tasks)
// from the queue and runs them through the ingestion pipeline. A periodic
// sweep is registered on the scheduler so documents the webhook missed are
// eventually picked up.
type IngestWorker struct {
	BaseWorker
	runner  Runner
	store   DocumentGetter
	reports ReportSaver
}

func NewIngestWorker(cfg *Config, runner Runner, store DocumentGetter, reports ReportSaver, log logger.Logger) (*IngestWorker, error) {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Concurrency,
	})

	scheduler := asynq.NewScheduler(redisOpt, nil)
	if cfg.SweepInterval != "" {
		sweep := asynq.NewTask(queue.TaskTypeSweep, nil, asynq.MaxRetry(0))
		if _, err := scheduler.Register(cfg.SweepInterval, sweep); err != nil {
			return nil, fmt.Errorf("failed to register sweep schedule: %w", err)
		}
	}

	w := &IngestWorker{
		BaseWorker: BaseWorker{
			server:    server,
			mux:       asynq.NewServeMux(),
			scheduler: scheduler,
			logger:    log,
		},
		runner:  runner,
		store:   store,
		reports: reports,
	}

	w.mux.HandleFunc(queue.TaskTypeSweep, w.handleSweep)
	w.mux.HandleFunc(queue.TaskTypeDocument, w.handleDocument)
	return w, nil
}

func (w *IngestWorker) handleSweep(ctx context.Context, t *asynq.Task) error {
	w.logger.Info("sweep task received")

	report, err := w.runner.Run(ctx)
	if err != nil {
		w.logger.Error("sweep failed", logger.Error(err))
		return err
	}

	if err := w.reports.SaveReport(ctx, report); err != nil {
		// The sweep itself succeeded; losing the report is log-worthy only.
		w.logger.Error("failed to save sweep report", logger.Error(err))
	}
	return nil
}

func (w *IngestWorker) handleDocument(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("invalid document task payload",
			logger.String("payload", string(t.Payload())),
			logger.Error(err),
		)
		return fmt.Errorf("invalid payload: %w", err)
	}
	if payload.DocumentID == "" {
		return fmt.Errorf("document task missing document_id")
	}

	doc, err := w.store.GetDocument(ctx, payload.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to load document %s: %w", payload.DocumentID, err)
	}

	// Duplicate notifications are a no-op, same as the webhook guard.
	if doc.Processed || doc.Summary != nil {
		w.logger.Info("document already processed, skipping",
			logger.String("document_id", doc.ID),
		)
		return nil
	}

	if err := w.runner.ProcessDocument(ctx, doc); err != nil {
		w.logger.Error("document ingestion failed",
			logger.String("document_id", doc.ID),
			logger.Error(err),
		)
		return err
	}

	w.logger.Info("document ingested",
		logger.String("document_id", doc.ID),
		logger.String("filename", doc.Filename),
	)
	return nil
}

func (w *IngestWorker) Start(ctx context.Context) error {
	if err := w.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}
