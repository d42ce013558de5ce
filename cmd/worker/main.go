package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/generative-ai-go/genai"
	_ "github.com/lib/pq"
	"google.golang.org/api/option"

	"github.com/chronoboard/backend/config"
	"github.com/chronoboard/backend/internal/extract"
	"github.com/chronoboard/backend/internal/pipeline"
	"github.com/chronoboard/backend/internal/store"
	"github.com/chronoboard/backend/internal/summarize"
	"github.com/chronoboard/backend/pkg/logger"
	"github.com/chronoboard/backend/pkg/queue"
	"github.com/chronoboard/backend/pkg/storage"
	"github.com/chronoboard/backend/pkg/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(
		logger.WithLevel(cfg.LogLevel),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("failed to open database", logger.Error(err))
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to ping database", logger.Error(err))
	}

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatal("failed to create gemini client", logger.Error(err))
	}
	defer genaiClient.Close()

	docStorage, err := storage.NewStorage(storage.Backend(cfg.StorageBackend), storage.Config{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		Region:    cfg.StorageRegion,
		UseSSL:    cfg.StorageUseSSL,
	}, log)
	if err != nil {
		log.Fatal("failed to create storage client", logger.Error(err))
	}

	docStore := store.NewDocumentStore(db)
	extractor := extract.NewExtractor(log.Named("extract"))
	summarizer := summarize.NewSummarizer(genaiClient, summarize.Config{
		Model:         cfg.SummaryModel,
		MaxTokens:     cfg.SummaryMaxTokens,
		Temperature:   cfg.SummaryTemperature,
		MaxInputChars: cfg.SummaryMaxInputChars,
		Timeout:       cfg.SummaryTimeout,
	}, log.Named("summarize"))

	runner := pipeline.NewRunner(docStore, docStorage, extractor, summarizer,
		log.Named("pipeline"), cfg.IngestConcurrency)

	tasks := queue.NewQueue(queue.Config{RedisAddr: cfg.RedisAddr, RedisDB: cfg.RedisDB})
	defer tasks.Close()

	workerCfg := &worker.Config{
		RedisAddr:     cfg.RedisAddr,
		RedisDB:       cfg.RedisDB,
		Concurrency:   cfg.WorkerConcurrency,
		SweepInterval: fmt.Sprintf("@every %s", cfg.SweepInterval),
	}

	ingestWorker, err := worker.NewIngestWorker(workerCfg, runner, docStore, tasks, log.Named("worker"))
	if err != nil {
		log.Fatal("failed to create ingest worker", logger.Error(err))
	}

	if err := ingestWorker.Start(ctx); err != nil {
		log.Fatal("failed to start worker", logger.Error(err))
	}
	log.Info("worker started",
		logger.Duration("sweep_interval", cfg.SweepInterval),
		logger.Int("concurrency", cfg.WorkerConcurrency),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down worker...")
	ingestWorker.Stop()
	log.Info("worker stopped")
}
