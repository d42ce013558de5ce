package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	_ "github.com/lib/pq"
	"google.golang.org/api/option"

	"github.com/chronoboard/backend/api/handlers"
	"github.com/chronoboard/backend/api/routes"
	"github.com/chronoboard/backend/config"
	"github.com/chronoboard/backend/internal/extract"
	"github.com/chronoboard/backend/internal/pipeline"
	"github.com/chronoboard/backend/internal/store"
	"github.com/chronoboard/backend/internal/summarize"
	"github.com/chronoboard/backend/pkg/auth"
	"github.com/chronoboard/backend/pkg/logger"
	"github.com/chronoboard/backend/pkg/queue"
	"github.com/chronoboard/backend/pkg/storage"
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
		logger.WithOutputPaths([]string{"stdout", "logs/app.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	// Postgres
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

	// Gemini
	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatal("failed to create gemini client", logger.Error(err))
	}
	defer genaiClient.Close()

	// Object storage
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

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTAudience, cfg.JWTIssuer())

	h := handlers.NewHandlers(docStore, runner, tasks, log.Named("api"))
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h, verifier, log)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: r,
	}

	go func() {
		log.Info("server starting", logger.Int("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", logger.Error(err))
	}
}
