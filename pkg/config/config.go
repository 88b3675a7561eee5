package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all environment-sourced configuration.
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External collaborators
	Chart  ChartConfig
	FRED   FREDConfig
	EDGAR  EDGARConfig
	Ollama OllamaConfig
	Alerts AlertConfig

	// Strategy tunables (YAML, see internal/engineconfig)
	EngineConfigPath string

	// Ticker universe (YAML, see internal/universe)
	WatchlistPath string

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ChartConfig holds the daily-bar chart API configuration.
type ChartConfig struct {
	BaseURL string
}

// FREDConfig holds the FRED macro series API configuration.
type FREDConfig struct {
	APIKey  string
	BaseURL string
}

// EDGARConfig holds SEC EDGAR access configuration.
// SEC은 User-Agent에 연락처 명시를 요구함
type EDGARConfig struct {
	UserAgent string
	BaseURL   string
}

// OllamaConfig holds the local language-model endpoint configuration.
type OllamaConfig struct {
	Host        string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// SchedulerConfig holds cron expressions for the background jobs.
// 크론 표현식은 초 단위 포함 (robfig/cron WithSeconds)
type SchedulerConfig struct {
	DiscoverySchedule string
	WatchlistSchedule string
}

// AlertConfig holds notification delivery configuration.
type AlertConfig struct {
	SlackWebhookURL string
	TelegramToken   string
	TelegramChatID  string
}

// Load reads configuration from environment variables.
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		Chart: ChartConfig{
			BaseURL: getEnv("CHART_BASE_URL", "https://query1.finance.yahoo.com"),
		},

		FRED: FREDConfig{
			APIKey:  getEnv("FRED_API_KEY", ""),
			BaseURL: getEnv("FRED_BASE_URL", "https://api.stlouisfed.org/fred"),
		},

		EDGAR: EDGARConfig{
			UserAgent: getEnv("SEC_USER_AGENT", "StockEngine admin@example.com"),
			BaseURL:   getEnv("SEC_BASE_URL", "https://www.sec.gov"),
		},

		Ollama: OllamaConfig{
			Host:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
			Model:       getEnv("OLLAMA_MODEL", "llama3.1:8b"),
			Temperature: getEnvAsFloat("OLLAMA_TEMPERATURE", 0.1),
			MaxTokens:   getEnvAsInt("OLLAMA_MAX_TOKENS", 2048),
			Timeout:     getEnvAsDuration("OLLAMA_TIMEOUT", "120s"),
		},

		Alerts: AlertConfig{
			SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
			TelegramToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
			TelegramChatID:  getEnv("TELEGRAM_CHAT_ID", ""),
		},

		EngineConfigPath: getEnv("ENGINE_CONFIG", "config/engine.yaml"),
		WatchlistPath:    getEnv("WATCHLIST_PATH", "config/watchlist.yaml"),

		Scheduler: SchedulerConfig{
			DiscoverySchedule: getEnv("DISCOVERY_SCHEDULE", "0 0 */6 * * *"),
			WatchlistSchedule: getEnv("WATCHLIST_SCHEDULE", "0 30 5 * * 1"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks required configuration values.
func (c *Config) validate() error {
	switch c.Env {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid ENV: %s", c.Env)
	}

	if c.Env == "production" && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required in production")
	}

	return nil
}

// loadEnvFile tries a few conventional locations for a .env file.
// 파일이 없어도 에러 아님 (환경변수 직접 주입 가능)
func loadEnvFile() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
		filepath.Join("..", "..", ".env"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key, fallback string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}
