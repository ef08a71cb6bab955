package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_AlertChannels(t *testing.T) {
	os.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	os.Setenv("TELEGRAM_CHAT_ID", "-100123")
	os.Setenv("SENDGRID_API_KEY", "sg-key")
	os.Setenv("ALERT_EMAIL_FROM", "alerts@clinic.example")
	os.Setenv("ALERT_EMAIL_TO", "oncall@clinic.example")
	defer func() {
		os.Unsetenv("TELEGRAM_BOT_TOKEN")
		os.Unsetenv("TELEGRAM_CHAT_ID")
		os.Unsetenv("SENDGRID_API_KEY")
		os.Unsetenv("ALERT_EMAIL_FROM")
		os.Unsetenv("ALERT_EMAIL_TO")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.True(t, cfg.Telegram.Enabled())
	assert.True(t, cfg.Email.Enabled())
	assert.Equal(t, "bot-token", cfg.Telegram.BotToken)
	assert.Equal(t, "oncall@clinic.example", cfg.Email.To)
}

func TestLoad_ChannelsDisabledWhenPartiallyConfigured(t *testing.T) {
	os.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	os.Unsetenv("TELEGRAM_CHAT_ID")
	os.Setenv("SENDGRID_API_KEY", "sg-key")
	os.Unsetenv("ALERT_EMAIL_FROM")
	os.Unsetenv("ALERT_EMAIL_TO")
	defer func() {
		os.Unsetenv("TELEGRAM_BOT_TOKEN")
		os.Unsetenv("SENDGRID_API_KEY")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.False(t, cfg.Telegram.Enabled())
	assert.False(t, cfg.Email.Enabled())
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("WEBHOOK_AUTH_TOKEN")
	os.Unsetenv("DB_HOST")
	os.Unsetenv("REDIS_HOST")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Empty(t, cfg.Auth.WebhookToken)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 900, cfg.Alerts.CooldownSeconds)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "triage",
		Password: "secret",
		Database: "postop_triage",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=triage password=secret dbname=postop_triage sslmode=require",
		cfg.DatabaseDSN(),
	)
}
