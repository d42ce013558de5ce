package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

// Config carries every knob the server and worker binaries need. All
// clients (datastore, storage, Gemini, redis) are constructed from it at
// startup and injected explicitly; nothing reads the environment later.
type Config struct {
	// Postgres (hosted datastore)
	DBHost string `envconfig:"DB_HOST" default:"localhost"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"postgres"`
	DBPass string `envconfig:"DB_PASS" default:""`
	DBName string `envconfig:"DB_NAME" default:"chronoboard"`

	// Auth
	JWTSecret          string `envconfig:"SUPABASE_JWT_SECRET"`
	SupabaseProjectRef string `envconfig:"SUPABASE_PROJECT_REF"`
	JWTAudience        string `envconfig:"JWT_AUDIENCE" default:"authenticated"`

	// Summarization
	GeminiAPIKey         string        `envconfig:"GEMINI_API_KEY"`
	SummaryModel         string        `envconfig:"SUMMARY_MODEL" default:"gemini-1.5-flash"`
	SummaryMaxTokens     int32         `envconfig:"SUMMARY_MAX_TOKENS" default:"300"`
	SummaryTemperature   float32       `envconfig:"SUMMARY_TEMPERATURE" default:"0.3"`
	SummaryMaxInputChars int           `envconfig:"SUMMARY_MAX_INPUT_CHARS" default:"16000"`
	SummaryTimeout       time.Duration `envconfig:"SUMMARY_TIMEOUT" default:"60s"`

	// Object storage holding uploaded document bytes
	StorageBackend   string `envconfig:"STORAGE_BACKEND" default:"minio"`
	StorageEndpoint  string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	StorageAccessKey string `envconfig:"STORAGE_ACCESS_KEY"`
	StorageSecretKey string `envconfig:"STORAGE_SECRET_KEY"`
	StorageBucket    string `envconfig:"STORAGE_BUCKET" default:"documents"`
	StorageRegion    string `envconfig:"STORAGE_REGION" default:"us-east-1"`
	StorageUseSSL    bool   `envconfig:"STORAGE_USE_SSL" default:"false"`

	// Task queue
	RedisAddr         string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB           int           `envconfig:"REDIS_DB" default:"0"`
	SweepInterval     time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`
	WorkerConcurrency int           `envconfig:"WORKER_CONCURRENCY" default:"5"`

	// Ingestion
	IngestConcurrency int `envconfig:"INGEST_CONCURRENCY" default:"1"`

	// Server
	ServerPort int    `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: SUPABASE_JWT_SECRET", ErrMissingRequired)
	}
	if c.SupabaseProjectRef == "" {
		return fmt.Errorf("%w: SUPABASE_PROJECT_REF", ErrMissingRequired)
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
	}
	if c.IngestConcurrency < 1 {
		return fmt.Errorf("INGEST_CONCURRENCY must be >= 1, got %d", c.IngestConcurrency)
	}
	return nil
}

// JWTIssuer is the token issuer URL the auth gate expects, derived from
// the Supabase project ref.
func (c *Config) JWTIssuer() string {
	return fmt.Sprintf("https://%s.supabase.co/auth/v1", c.SupabaseProjectRef)
}
