package config

import (
	"testing"
	"time"
)

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := Config{
		App:      AppConfig{Env: "production", Port: 8080},
		DB:       DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "fitness", SSLMode: ""},
		Auth:     AuthConfig{JWTSecret: "secret", JWTIssuer: "iss", JWTAudience: "aud"},
		Telegram: TelegramConfig{BotToken: "123:abc"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalAppliesDefaults(t *testing.T) {
	c := Config{
		App:      AppConfig{Env: "local", Port: 8080},
		DB:       DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "fitness"},
		Auth:     AuthConfig{JWTSecret: "secret"},
		Telegram: TelegramConfig{BotToken: "123:abc"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Auth.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("expected 30m access ttl default, got %v", c.Auth.AccessTokenTTL)
	}
	if c.Telegram.InitDataMaxAge != 24*time.Hour {
		t.Fatalf("expected 24h init data max age default, got %v", c.Telegram.InitDataMaxAge)
	}
	if c.App.DefaultLocale != "en" {
		t.Fatalf("expected default locale en, got %q", c.App.DefaultLocale)
	}
}

func TestValidate_MissingBotToken(t *testing.T) {
	c := Config{
		App:  AppConfig{Env: "local", Port: 8080},
		DB:   DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "fitness"},
		Auth: AuthConfig{JWTSecret: "secret"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for missing TELEGRAM_BOT_TOKEN")
	}
}
