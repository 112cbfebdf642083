package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all server settings loaded from the environment.
type Config struct {
	// Server
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBPassword    string        `envconfig:"DB_PASSWORD" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	MigrationsDir string        `envconfig:"MIGRATIONS_DIR" default:"migrations"`

	// Redis (ephemeral pipeline sessions)
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// RabbitMQ
	RabbitMQURL           string `envconfig:"RABBITMQ_URL" required:"true"`
	IllustrationTaskQueue string `envconfig:"ILLUSTRATION_TASK_QUEUE" default:"illustration_tasks"`

	// Object storage
	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT" required:"true"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY" required:"true"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY" required:"true"`
	MinioBucket    string `envconfig:"MINIO_BUCKET" default:"storylion"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`

	// OpenAI-compatible APIs
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:""`
	TextModel     string `envconfig:"TEXT_MODEL" default:"gpt-4o-mini"`
	STTModel      string `envconfig:"STT_MODEL" default:"whisper-1"`
	ImageModel    string `envconfig:"IMAGE_MODEL" default:"gpt-image-1"`

	// Voice engine sidecar
	VoiceEngineURL string `envconfig:"VOICE_ENGINE_URL" default:"http://localhost:9880"`

	// JWT
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig loads the configuration from a .env file (when present) and the
// environment.
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}
