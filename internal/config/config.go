package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the application.
type Config struct {
	Env          string `yaml:"env"`
	Port         string `yaml:"port"`
	DatabasePath string `yaml:"database_path"`
	DataDir      string `yaml:"data_dir"`

	// Form drafts
	SessionBackend string        `yaml:"session_backend"`
	SessionTTL     time.Duration `yaml:"-"`
	SessionTTLRaw  string        `yaml:"session_ttl"`
	RedisAddr      string        `yaml:"redis_addr"`
	RedisPassword  string        `yaml:"redis_password"`
	RedisDB        int           `yaml:"redis_db"`

	// Operator endpoints
	AdminTokenSecret   string   `yaml:"admin_token_secret"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// Telegram Config
	TelegramBotToken       string  `yaml:"telegram_bot_token"`
	TelegramWebhookURL     string  `yaml:"telegram_webhook_url"`
	TelegramAllowedUserIDs []int64 `yaml:"telegram_allowed_user_ids"`
	AdminTelegramID        int64   `yaml:"admin_telegram_id"`
}

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

func defaults() *Config {
	return &Config{
		Env:            "development",
		Port:           "8080",
		DatabasePath:   "data/quickcalc.db",
		DataDir:        "data",
		SessionBackend: BackendSQLite,
		SessionTTLRaw:  "30m",
		RedisAddr:      "localhost:6379",
	}
}

// NewFromEnv builds the configuration from, in increasing priority: built-in
// defaults, the YAML file named by QUICKCALC_CONFIG, and environment
// variables. A .env file in the working directory is loaded when present.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("QUICKCALC_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	setString(&cfg.Env, "ENV")
	setString(&cfg.Port, "PORT")
	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.SessionBackend, "SESSION_BACKEND")
	setString(&cfg.SessionTTLRaw, "SESSION_TTL")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.AdminTokenSecret, "ADMIN_TOKEN_SECRET")
	setString(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.TelegramWebhookURL, "TELEGRAM_WEBHOOK_URL")

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
		}
		cfg.RedisDB = db
	}
	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID must be an integer: %w", err)
		}
		cfg.AdminTelegramID = id
	}
	if v := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); v != "" {
		ids, err := parseIDList(v)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS: %w", err)
		}
		cfg.TelegramAllowedUserIDs = ids
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireTelegram checks the settings only the bot needs.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// IsAllowedTelegramUser reports whether id may use the bot. An empty
// allow-list admits everyone.
func (c *Config) IsAllowedTelegramUser(id int64) bool {
	if len(c.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, allowed := range c.TelegramAllowedUserIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.SessionBackend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.SessionBackend)
	}

	ttl, err := time.ParseDuration(c.SessionTTLRaw)
	if err != nil {
		return fmt.Errorf("invalid SESSION_TTL %q: %w", c.SessionTTLRaw, err)
	}
	if ttl <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", ttl)
	}
	c.SessionTTL = ttl

	if c.SessionBackend == BackendRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR environment variable not set")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
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

func parseIDList(v string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(v) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
