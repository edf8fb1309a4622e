// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// DefaultMode selects between a fully local stack (sqlite-vec + offline
	// deterministic embeddings) and the cloud stack (Qdrant + OpenRouter/OpenAI), §6.
	DefaultMode string `env:"DEFAULT_MODE" envDefault:"local"`

	OpenRouterAPIKey      string        `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL     string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterReferer     string        `env:"OPENROUTER_REFERER"`
	OpenRouterTitle       string        `env:"OPENROUTER_TITLE" envDefault:"CV Retrieval QA"`
	OpenRouterMinInterval time.Duration `env:"OPENROUTER_MIN_INTERVAL" envDefault:"5s"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	EmbeddingsModel string `env:"EMBEDDINGS_MODEL" envDefault:"text-embedding-3-small"`

	GroqAPIKey  string `env:"GROQ_API_KEY"`
	GroqBaseURL string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`

	// Model ids per §6.
	UnderstandingModel string `env:"UNDERSTANDING_MODEL" envDefault:"llama-3.1-8b-instant"`
	RerankModel        string `env:"RERANK_MODEL" envDefault:"llama-3.1-8b-instant"`
	GenerationModel    string `env:"GENERATION_MODEL" envDefault:"llama-3.3-70b-versatile"`
	VerificationModel  string `env:"VERIFICATION_MODEL" envDefault:"llama-3.1-8b-instant"`

	SupabaseURL        string `env:"SUPABASE_URL"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_KEY"`

	QdrantURL    string `env:"QDRANT_URL" envDefault:"http://localhost:6333"`
	QdrantAPIKey string `env:"QDRANT_API_KEY"`

	// SQLiteVecPath is the local-mode vector store file (sqlite-vec extension).
	SQLiteVecPath string `env:"SQLITE_VEC_PATH" envDefault:"./data/cvstore.db"`

	// TikaURL is the Apache Tika server used for PDF text extraction.
	TikaURL string `env:"TIKA_URL" envDefault:"http://tika:9998"`

	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// KafkaBrokers feeds the background bulk-ingestion queue (cmd/worker);
	// empty disables it (the HTTP ingestion path stays fully synchronous).
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"cv-retrieval-qa"`

	// Retrieval defaults (§6).
	RetrievalK               int     `env:"RETRIEVAL_K" envDefault:"8"`
	RetrievalScoreThreshold  float64 `env:"RETRIEVAL_SCORE_THRESHOLD" envDefault:"0.25"`
	RetrievalLargeCorpusSize int     `env:"RETRIEVAL_LARGE_CORPUS_SIZE" envDefault:"100"`

	EmbedCacheSize int `env:"EMBED_CACHE_SIZE" envDefault:"2048"`

	MaxUploadMB           int64         `env:"MAX_UPLOAD_MB" envDefault:"10"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	// Per-stage provider deadlines (§5).
	TimeoutUnderstanding time.Duration `env:"TIMEOUT_UNDERSTANDING" envDefault:"60s"`
	TimeoutRerank        time.Duration `env:"TIMEOUT_RERANK" envDefault:"60s"`
	TimeoutVerify        time.Duration `env:"TIMEOUT_VERIFY" envDefault:"60s"`
	TimeoutGenerate      time.Duration `env:"TIMEOUT_GENERATE" envDefault:"120s"`
	TimeoutEmbed         time.Duration `env:"TIMEOUT_EMBED" envDefault:"30s"`
	TimeoutSearch        time.Duration `env:"TIMEOUT_SEARCH" envDefault:"30s"`

	// Retry/backoff for transient provider errors (embed/search only, §7).
	RetryMaxRetries   int           `env:"RETRY_MAX_RETRIES" envDefault:"3"`
	RetryInitialDelay time.Duration `env:"RETRY_INITIAL_DELAY" envDefault:"2s"`
	RetryMaxDelay     time.Duration `env:"RETRY_MAX_DELAY" envDefault:"30s"`
	RetryMultiplier   float64       `env:"RETRY_MULTIPLIER" envDefault:"2.0"`
	RetryJitter       bool          `env:"RETRY_JITTER" envDefault:"true"`

	DLQMaxAge          time.Duration `env:"DLQ_MAX_AGE" envDefault:"168h"`
	DLQCleanupInterval time.Duration `env:"DLQ_CLEANUP_INTERVAL" envDefault:"24h"`

	// EvalLogPath is the local-mode append-only telemetry file (§6).
	EvalLogPath string `env:"EVAL_LOG_PATH" envDefault:"./data/eval_log.jsonl"`

	// KafkaConsumerGroup names the background indexer's consumer group
	// (cmd/worker).
	KafkaConsumerGroup string `env:"KAFKA_CONSUMER_GROUP" envDefault:"cv-index-workers"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// IsCloudMode reports whether providers should be the cloud (Qdrant +
// OpenRouter/OpenAI) stack rather than the local stack (§6 DEFAULT_MODE).
func (c Config) IsCloudMode() bool { return strings.ToLower(c.DefaultMode) == "cloud" }
