package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/finance-coach/internal/analytics"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendBigQuery = "bigquery"
	BackendMongo    = "mongo"
)

// LLM providers.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// Defaults.
const (
	DefaultPort            = "8080"
	DefaultGeminiModel     = "gemini-1.5-flash"
	DefaultAnthropicModel  = "claude-3-5-haiku-latest"
	DefaultLLMTimeout      = 8 * time.Second
	DefaultForecastTimeout = 10 * time.Second
	DefaultSeedTimeout     = 10 * time.Second
	DefaultMongoDatabase   = "finance_coach"
	DefaultBigQueryDataset = "finance_coach"
)

// Config is the process configuration shared by every command.
type Config struct {
	Port string

	StoreBackend    string
	DatabaseURL     string
	MongoURI        string
	MongoDatabase   string
	BigQueryProject string
	BigQueryDataset string
	GCSBucket       string

	LLMProvider     string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	LLMTimeout      time.Duration
	ForecastTimeout time.Duration
	SeedTimeout     time.Duration

	IncomeMode    analytics.IncomeMode
	Subscriptions analytics.SubscriptionConfig

	SnapshotSchedule string

	NotionToken     string
	NotionGoalsDBID string

	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("Load: read .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	e := envReader{getenv: getenv}

	cfg := Config{
		Port:             e.str("PORT", DefaultPort),
		StoreBackend:     strings.ToLower(e.str("STORE_BACKEND", BackendMemory)),
		DatabaseURL:      e.str("DATABASE_URL", ""),
		MongoURI:         e.str("MONGO_URI", ""),
		MongoDatabase:    e.str("MONGO_DATABASE", DefaultMongoDatabase),
		BigQueryProject:  e.str("BIGQUERY_PROJECT", ""),
		BigQueryDataset:  e.str("BIGQUERY_DATASET", DefaultBigQueryDataset),
		GCSBucket:        e.str("GCS_BUCKET", ""),
		LLMProvider:      strings.ToLower(e.str("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:     e.str("GEMINI_API_KEY", ""),
		GeminiModel:      e.str("GEMINI_MODEL", DefaultGeminiModel),
		AnthropicAPIKey:  e.str("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   e.str("ANTHROPIC_MODEL", DefaultAnthropicModel),
		LLMTimeout:       e.duration("LLM_TIMEOUT", DefaultLLMTimeout),
		ForecastTimeout:  e.duration("FORECAST_TIMEOUT", DefaultForecastTimeout),
		SeedTimeout:      e.duration("SEED_TIMEOUT", DefaultSeedTimeout),
		IncomeMode:       analytics.ParseIncomeMode(e.str("INCOME_MODE", string(analytics.IncomeProxy))),
		SnapshotSchedule: e.str("SNAPSHOT_SCHEDULE", ""),
		NotionToken:      e.str("NOTION_TOKEN", ""),
		NotionGoalsDBID:  e.str("NOTION_GOALS_DB_ID", ""),
		LogLevel:         e.str("LOG_LEVEL", "info"),
		LogFormat:        e.str("LOG_FORMAT", "console"),
	}

	subs := analytics.DefaultSubscriptionConfig()
	subs.MinIntervalDays = e.float("SUBSCRIPTION_MIN_INTERVAL_DAYS", subs.MinIntervalDays)
	subs.MaxIntervalDays = e.float("SUBSCRIPTION_MAX_INTERVAL_DAYS", subs.MaxIntervalDays)
	subs.AmplitudeTolerance = e.float("SUBSCRIPTION_AMPLITUDE_TOLERANCE", subs.AmplitudeTolerance)
	cfg.Subscriptions = subs

	if len(e.errs) > 0 {
		return Config{}, fmt.Errorf("FromEnv: %w", errors.Join(e.errs...))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements of the selected backends.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("Validate: DATABASE_URL is required for the %s backend", c.StoreBackend)
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("Validate: MONGO_URI is required for the %s backend", c.StoreBackend)
		}
	case BackendBigQuery:
		if c.BigQueryProject == "" {
			return fmt.Errorf("Validate: BIGQUERY_PROJECT is required for the %s backend", c.StoreBackend)
		}
	default:
		return fmt.Errorf("Validate: unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.LLMProvider {
	case ProviderGemini, ProviderAnthropic, ProviderNone:
	default:
		return fmt.Errorf("Validate: unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	if c.Subscriptions.MinIntervalDays > c.Subscriptions.MaxIntervalDays {
		return fmt.Errorf("Validate: subscription interval window is empty (%v > %v)",
			c.Subscriptions.MinIntervalDays, c.Subscriptions.MaxIntervalDays)
	}
	return nil
}

type envReader struct {
	getenv func(string) string
	errs   []error
}

func (e *envReader) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Bare numbers are seconds.
		secs, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if d <= 0 {
		e.errs = append(e.errs, fmt.Errorf("%s: must be positive", key))
		return def
	}
	return d
}

func (e *envReader) float(key string, def float64) float64 {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}
