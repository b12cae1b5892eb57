package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	StorageDriver string
	DatabaseURL   string
	EnableDBCheck bool
	RunMigrations bool

	JWTSecret string
	JWTIssuer string // Empty disables the issuer check

	AmountScale        int32
	PostingLockTimeout time.Duration
	LedgerPageSize     int

	RateLimit          string // ulule/limiter formatted rate, e.g. "100-M"
	CORSAllowedOrigins []string

	PosthogAPIKey   string
	PosthogEndpoint string

	RabbitMQURL        string
	RabbitMQExchange   string
	NotifierQueueSize  int
	NotifierMaxRetries uint
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("AMOUNT_SCALE", 2)
	v.SetDefault("POSTING_LOCK_TIMEOUT", "5s")
	v.SetDefault("LEDGER_PAGE_SIZE", 500)
	v.SetDefault("RATE_LIMIT", "600-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "ledger.events")
	v.SetDefault("NOTIFIER_QUEUE_SIZE", 256)
	v.SetDefault("NOTIFIER_MAX_RETRIES", 5)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:               v.GetString("PORT"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		StorageDriver:      strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		DatabaseURL:        v.GetString("PGSQL_URL"),
		EnableDBCheck:      v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations:      v.GetBool("RUN_MIGRATIONS"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		AmountScale:        v.GetInt32("AMOUNT_SCALE"),
		LedgerPageSize:     v.GetInt("LEDGER_PAGE_SIZE"),
		RateLimit:          v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		PosthogAPIKey:      v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:    v.GetString("POSTHOG_ENDPOINT"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		RabbitMQExchange:   v.GetString("RABBITMQ_EXCHANGE"),
		NotifierQueueSize:  v.GetInt("NOTIFIER_QUEUE_SIZE"),
		NotifierMaxRetries: v.GetUint("NOTIFIER_MAX_RETRIES"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	lockTimeoutStr := v.GetString("POSTING_LOCK_TIMEOUT")
	lockTimeout, err := time.ParseDuration(lockTimeoutStr)
	if err != nil || lockTimeout <= 0 {
		return nil, fmt.Errorf("invalid POSTING_LOCK_TIMEOUT %q", lockTimeoutStr)
	}
	cfg.PostingLockTimeout = lockTimeout

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER is %s", StoragePostgres)
		}
	case StorageMemory:
		log.Println("Warning: using the in-memory store, data is lost on restart.")
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if cfg.AmountScale < 0 || cfg.AmountScale > 18 {
		return nil, fmt.Errorf("AMOUNT_SCALE must be between 0 and 18, got %d", cfg.AmountScale)
	}
	if cfg.LedgerPageSize <= 0 {
		return nil, fmt.Errorf("LEDGER_PAGE_SIZE must be positive, got %d", cfg.LedgerPageSize)
	}
	if cfg.NotifierQueueSize <= 0 {
		return nil, fmt.Errorf("NOTIFIER_QUEUE_SIZE must be positive, got %d", cfg.NotifierQueueSize)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
