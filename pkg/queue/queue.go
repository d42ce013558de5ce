package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/chronoboard/backend/internal/pipeline"
)

// Task types. A sweep processes every eligible document; a document task
// processes exactly one. Both end in the same pipeline code, so any
// transport (webhook push, HTTP trigger, periodic schedule) can publish a
// change event without knowing how it gets processed.
const (
	TaskTypeSweep    = "ingest:sweep"
	TaskTypeDocument = "ingest:document"
)

const lastReportKey = "ingest:last_report"

// ErrNoReport is returned when no sweep has completed yet.
var ErrNoReport = errors.New("no sweep report available")

// DocumentPayload is the body of an ingest:document task.
type DocumentPayload struct {
	DocumentID string `json:"document_id"`
}

type Config struct {
	RedisAddr string
	RedisDB   int
}

// Queue publishes ingestion tasks and persists the latest sweep report so
// the API can serve it.
type Queue struct {
	client *asynq.Client
	redis  *redis.Client
}

func NewQueue(cfg Config) *Queue {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}
	return &Queue{
		client: asynq.NewClient(redisOpt),
		redis: redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		}),
	}
}

// EnqueueSweep schedules one batch pass over all eligible documents.
// Sweeps are deduplicated by task id so a pending sweep absorbs repeat
// triggers.
func (q *Queue) EnqueueSweep(ctx context.Context) error {
	task := asynq.NewTask(TaskTypeSweep, nil,
		asynq.TaskID("ingest-sweep"),
		asynq.MaxRetry(0),
		asynq.Timeout(30*time.Minute),
	)
	_, err := q.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue sweep: %w", err)
	}
	return nil
}

// EnqueueDocument schedules ingestion of a single document.
func (q *Queue) EnqueueDocument(ctx context.Context, documentID string) error {
	payload, err := json.Marshal(DocumentPayload{DocumentID: documentID})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskTypeDocument, payload,
		asynq.MaxRetry(0),
		asynq.Timeout(10*time.Minute),
	)
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue document task: %w", err)
	}
	return nil
}

// SaveReport persists the outcome of the latest sweep for 24 hours.
func (q *Queue) SaveReport(ctx context.Context, report *pipeline.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := q.redis.Set(ctx, lastReportKey, data, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// LastReport returns the most recently saved sweep report.
func (q *Queue) LastReport(ctx context.Context) (*pipeline.Report, error) {
	data, err := q.redis.Get(ctx, lastReportKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var report pipeline.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

func (q *Queue) Close() error {
	cerr := q.client.Close()
	rerr := q.redis.Close()
	if cerr != nil {
		return cerr
	}
	return rerr
}
