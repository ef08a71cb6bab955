package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Telegram TelegramConfig
	Email    EmailConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Alerts   AlertConfig
	OTEL     OTELConfig
	Env      string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// AuthConfig holds the pre-shared webhook credential.
// An empty token disables the endpoint entirely (fail closed).
type AuthConfig struct {
	WebhookToken string
}

// TelegramConfig holds the staff messaging channel configuration
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// Enabled reports whether the Telegram channel is fully configured
func (c *TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != ""
}

// EmailConfig holds the transactional email channel configuration
type EmailConfig struct {
	APIKey string
	From   string
	To     string
}

// Enabled reports whether the email channel is fully configured
func (c *EmailConfig) Enabled() bool {
	return c.APIKey != "" && c.From != "" && c.To != ""
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Enabled reports whether the optional persistence collaborator is configured
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Enabled reports whether the optional alert throttle store is configured
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

// AlertConfig holds alert dispatch tuning
type AlertConfig struct {
	CooldownSeconds int
	SendTimeoutSecs int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Auth: AuthConfig{
			WebhookToken: getEnv("WEBHOOK_AUTH_TOKEN", ""),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
		Email: EmailConfig{
			APIKey: getEnv("SENDGRID_API_KEY", ""),
			From:   getEnv("ALERT_EMAIL_FROM", ""),
			To:     getEnv("ALERT_EMAIL_TO", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "postop_triage"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Alerts: AlertConfig{
			CooldownSeconds: getEnvAsInt("ALERT_COOLDOWN_SECONDS", 900),
			SendTimeoutSecs: getEnvAsInt("ALERT_SEND_TIMEOUT_SECONDS", 20),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "postop-triage"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Env: getEnv("APP_ENV", "development"),
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
