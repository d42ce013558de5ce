package worker

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/chronoboard/backend/pkg/logger"
)

type Worker interface {
	Start(ctx context.Context) error
	Stop() error
}

type Config struct {
	RedisAddr     string
	RedisDB       int
	Concurrency   int
	SweepInterval string // asynq cron spec, e.g. "@every 10m"
}

// BaseWorker wraps the asynq server and the scheduler that feeds it
// periodic sweeps.
type BaseWorker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    logger.Logger
}

func (w *BaseWorker) Stop() error {
	if w.scheduler != nil {
		w.scheduler.Shutdown()
	}
	w.server.Stop()
	w.server.Shutdown()
	return nil
}
