package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Redis    RedisConfig
	Mailer   MailerConfig
	Dispatch DispatchConfig
	Env      string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string
	MetricsPort string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RabbitMQConfig holds RabbitMQ configuration
type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Queue    string
}

// RedisConfig holds the optional Redis precache store configuration.
// An empty Addr means the worker falls back to the in-memory cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MailerConfig holds mail transport and ISP restriction settings.
// MaxBatch <= 0 disables rate limiting entirely.
type MailerConfig struct {
	MailgunDomain  string
	MailgunAPIKey  string
	FromAddress    string
	ReplyTo        string
	MaxBatch       int
	MinBatchPeriod time.Duration
}

// DispatchConfig holds campaign dispatch settings
type DispatchConfig struct {
	MaxProcessTime time.Duration
	PrecacheTTL    time.Duration
	TextWrapWidth  int

	// AttributeTags are the recipient attribute names the placeholder
	// engine treats as resolvable tags.
	AttributeTags []string

	PublicURL      string
	UnsubscribeURL string
	PreferencesURL string
	ForwardURL     string
	WebsiteURL     string
	Domain         string
	Signature      string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			MetricsPort: getEnv("METRICS_PORT", "9091"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "mailblast"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "mailblast_db"),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnv("RABBITMQ_PORT", "5672"),
			User:     getEnv("RABBITMQ_DEFAULT_USER", "guest"),
			Password: getEnv("RABBITMQ_DEFAULT_PASS", "guest"),
			Queue:    getEnv("RABBITMQ_QUEUE", "campaign_dispatch"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Mailer: MailerConfig{
			MailgunDomain:  getEnv("MAILGUN_DOMAIN", ""),
			MailgunAPIKey:  getEnv("MAILGUN_API_KEY", ""),
			FromAddress:    getEnv("FROM_ADDRESS", "news@example.com"),
			ReplyTo:        getEnv("REPLY_TO", ""),
			MaxBatch:       getEnvAsInt("ISP_MAX_BATCH", 0),
			MinBatchPeriod: getEnvAsDuration("ISP_MIN_BATCH_PERIOD", 0),
		},
		Dispatch: DispatchConfig{
			MaxProcessTime: getEnvAsDuration("DISPATCH_MAX_PROCESS_TIME", 25*time.Second),
			PrecacheTTL:    getEnvAsDuration("PRECACHE_TTL", time.Hour),
			TextWrapWidth:  getEnvAsInt("TEXT_WRAP_WIDTH", 75),
			AttributeTags:  getEnvAsList("ATTRIBUTE_TAGS", []string{"FIRSTNAME", "LASTNAME", "CITY"}),
			PublicURL:      getEnv("PUBLIC_URL", "http://localhost:8080"),
			UnsubscribeURL: getEnv("UNSUBSCRIBE_URL", ""),
			PreferencesURL: getEnv("PREFERENCES_URL", ""),
			ForwardURL:     getEnv("FORWARD_URL", ""),
			WebsiteURL:     getEnv("WEBSITE_URL", ""),
			Domain:         getEnv("DOMAIN", ""),
			Signature:      getEnv("SIGNATURE", ""),
		},
		Env: getEnv("ENV", "development"),
	}

	// The page URLs default to paths under the public URL so a minimal
	// deployment only has to set PUBLIC_URL.
	if config.Dispatch.UnsubscribeURL == "" {
		config.Dispatch.UnsubscribeURL = config.Dispatch.PublicURL + "/unsubscribe"
	}
	if config.Dispatch.PreferencesURL == "" {
		config.Dispatch.PreferencesURL = config.Dispatch.PublicURL + "/preferences"
	}
	if config.Dispatch.ForwardURL == "" {
		config.Dispatch.ForwardURL = config.Dispatch.PublicURL + "/forward"
	}

	// Validate required fields
	if config.Database.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD is required")
	}

	return config, nil
}

// GetDatabaseDSN returns PostgreSQL connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// GetRabbitMQURL returns RabbitMQ connection URL
func (c *Config) GetRabbitMQURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		c.RabbitMQ.User,
		c.RabbitMQ.Password,
		c.RabbitMQ.Host,
		c.RabbitMQ.Port,
	)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// getEnv gets environment variable or returns default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets environment variable as integer or returns default
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList gets environment variable as a comma-separated list or
// returns default
func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

// getEnvAsDuration gets environment variable as duration or returns default
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
