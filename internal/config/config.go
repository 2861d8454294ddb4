package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheMemory   = "memory"
	CacheSQLite   = "sqlite"
	CacheDynamoDB = "dynamodb"
)

// LLM providers.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`
	Port     string `yaml:"port"`

	LLMProvider  string        `yaml:"llm_provider"`
	GeminiAPIKey string        `yaml:"-"`
	GeminiModel  string        `yaml:"gemini_model"`
	GroqAPIKey   string        `yaml:"-"`
	GroqModel    string        `yaml:"groq_model"`
	LLMTimeout   time.Duration `yaml:"llm_timeout"`

	DatabasePath string `yaml:"database_path"`

	CacheBackend       string        `yaml:"cache_backend"`
	CacheMaxEntries    int           `yaml:"cache_max_entries"`
	CacheTTL           time.Duration `yaml:"cache_ttl"`
	DynamoDBCacheTable string        `yaml:"dynamodb_cache_table"`

	InviteSecret string        `yaml:"-"`
	InviteTTL    time.Duration `yaml:"invite_ttl"`

	// Telegram Config
	TelegramBotToken string `yaml:"-"`

	AllowedOrigins []string `yaml:"allowed_origins"`
}

func defaults() *Config {
	return &Config{
		AppEnv:         "development",
		Port:           "8080",
		LLMProvider:    ProviderGemini,
		LLMTimeout:     90 * time.Second,
		DatabasePath:   "data/meal-planner.db",
		CacheBackend:   CacheSQLite,
		InviteTTL:      72 * time.Hour,
		AllowedOrigins: []string{"*"},
	}
}

// NewFromEnv creates a new Config object from environment variables. When
// CONFIG_FILE names a YAML file it is read first and the environment
// overrides it. Secrets are only taken from the environment.
func NewFromEnv() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	setString(&cfg.AppEnv, "APP_ENV")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.Port, "PORT")
	setString(&cfg.LLMProvider, "LLM_PROVIDER")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.GroqAPIKey, "GROQ_API_KEY")
	setString(&cfg.GroqModel, "GROQ_MODEL")
	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.CacheBackend, "CACHE_BACKEND")
	setString(&cfg.DynamoDBCacheTable, "DYNAMODB_CACHE_TABLE")
	setString(&cfg.InviteSecret, "INVITE_SECRET")
	setString(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	if err := setDuration(&cfg.LLMTimeout, "LLM_TIMEOUT"); err != nil {
		return nil, err
	}
	if err := setDuration(&cfg.CacheTTL, "CACHE_TTL"); err != nil {
		return nil, err
	}
	if err := setDuration(&cfg.InviteTTL, "INVITE_TTL"); err != nil {
		return nil, err
	}
	if v := os.Getenv("CACHE_MAX_ENTRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("CACHE_MAX_ENTRIES must be an integer: %w", err)
		}
		cfg.CacheMaxEntries = n
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.LLMProvider = strings.ToLower(c.LLMProvider)
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	c.CacheBackend = strings.ToLower(c.CacheBackend)
	switch c.CacheBackend {
	case CacheMemory, CacheSQLite:
	case CacheDynamoDB:
		if c.DynamoDBCacheTable == "" {
			return fmt.Errorf("DYNAMODB_CACHE_TABLE must be set for the dynamodb cache backend")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must not be negative")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if len(c.InviteSecret) < 16 {
		return fmt.Errorf("INVITE_SECRET must be set to at least 16 characters")
	}
	return nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s must be a duration like 90s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
