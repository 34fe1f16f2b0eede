package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DevJWTSecret is the signing secret used when none is configured. Release mode refuses it.
const DevJWTSecret = "dev-secret-key"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Upload    UploadConfig    `yaml:"upload"`
	S3        S3Config        `yaml:"s3"`
	Assistant AssistantConfig `yaml:"assistant"`
	CORS      CORSConfig      `yaml:"cors"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host         string        `yaml:"host" env:"SERVER_HOST"`
	Port         int           `yaml:"port" env:"SERVER_PORT" validate:"min=1,max=65535"`
	Mode         string        `yaml:"mode" env:"SERVER_MODE" validate:"oneof=debug release test"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER" validate:"oneof=postgres sqlite"`
	DSN      string `yaml:"dsn" env:"DB_DSN"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
}

type RedisConfig struct {
	Enabled        bool          `yaml:"enabled" env:"REDIS_ENABLED"`
	Addr           string        `yaml:"addr" env:"REDIS_ADDR"`
	Password       string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB             int           `yaml:"db" env:"REDIS_DB"`
	LeaderboardTTL time.Duration `yaml:"leaderboard_ttl" env:"REDIS_LEADERBOARD_TTL"`
}

type JWTConfig struct {
	Secret       string `yaml:"secret" env:"JWT_SECRET" validate:"required"`
	ExpireHours  int    `yaml:"expire_hours" env:"JWT_EXPIRE_HOURS" validate:"min=1"`
	CookieName   string `yaml:"cookie_name" env:"JWT_COOKIE_NAME" validate:"required"`
	CookieSecure bool   `yaml:"cookie_secure" env:"JWT_COOKIE_SECURE"`
}

type UploadConfig struct {
	Backend   string `yaml:"backend" env:"UPLOAD_BACKEND" validate:"oneof=local s3"`
	Dir       string `yaml:"dir" env:"UPLOAD_DIR" validate:"required"`
	MaxSizeMB int    `yaml:"max_size_mb" env:"UPLOAD_MAX_SIZE_MB" validate:"min=1"`
}

// S3Config describes an S3-compatible bucket (AWS, R2, MinIO).
type S3Config struct {
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT"`
	Region          string `yaml:"region" env:"S3_REGION"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	PublicBaseURL   string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
}

type AssistantConfig struct {
	SystemPrompt       string        `yaml:"system_prompt" env:"SYSTEM_PROMPT"`
	Timeout            time.Duration `yaml:"timeout" env:"ASSISTANT_TIMEOUT" validate:"min=1s"`
	HistoryWindow      int           `yaml:"history_window" env:"ASSISTANT_HISTORY_WINDOW" validate:"min=1"`
	DefaultTemperature float64       `yaml:"default_temperature" env:"ASSISTANT_DEFAULT_TEMPERATURE" validate:"min=0,max=1"`
	DefaultMaxTokens   int           `yaml:"default_max_tokens" env:"ASSISTANT_DEFAULT_MAX_TOKENS" validate:"min=1"`
	Yandex             YandexConfig  `yaml:"yandex"`
	Groq               GroqConfig    `yaml:"groq"`
}

type YandexConfig struct {
	URL       string `yaml:"url" env:"YANDEX_URL" validate:"url"`
	CatalogID string `yaml:"catalog_id" env:"YANDEX_CATALOG_ID"`
	SecretKey string `yaml:"secret_key" env:"YANDEX_SECRET_KEY"`
}

type GroqConfig struct {
	URL    string `yaml:"url" env:"GROQ_URL" validate:"url"`
	APIKey string `yaml:"api_key" env:"GROQ_API_KEY"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

type LogConfig struct {
	Dir   string `yaml:"dir" env:"LOG_DIR"`
	Level string `yaml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// Default returns a configuration usable for local development with SQLite.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			Mode:         "debug",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "db/cards.db",
		},
		Redis: RedisConfig{
			Addr:           "localhost:6379",
			LeaderboardTTL: 30 * time.Second,
		},
		JWT: JWTConfig{
			Secret:      DevJWTSecret,
			ExpireHours: 72,
			CookieName:  "session",
		},
		Upload: UploadConfig{
			Backend:   "local",
			Dir:       "static/card_images",
			MaxSizeMB: 5,
		},
		S3: S3Config{
			Region: "auto",
		},
		Assistant: AssistantConfig{
			Timeout:            30 * time.Second,
			HistoryWindow:      10,
			DefaultTemperature: 0.7,
			DefaultMaxTokens:   2000,
			Yandex: YandexConfig{
				URL: "https://llm.api.cloud.yandex.net/foundationModels/v1/completion",
			},
			Groq: GroqConfig{
				URL: "https://api.groq.com/openai/v1/chat/completions",
			},
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
		},
		Log: LogConfig{
			Dir:   "logs",
			Level: "info",
		},
	}
}

// Load loads configuration from file, .env and environment variables.
// A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct tags of the whole configuration tree.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Server.Mode == "release" && c.JWT.Secret == DevJWTSecret {
		return errors.New("invalid config: jwt.secret must be set in release mode")
	}
	return nil
}

// Addr returns host:port for the HTTP listener
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// PostgresDSN returns the PostgreSQL connection string. An explicit DSN wins.
func (c *DatabaseConfig) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// TokenTTL returns the session lifetime
func (c *JWTConfig) TokenTTL() time.Duration {
	return time.Duration(c.ExpireHours) * time.Hour
}
