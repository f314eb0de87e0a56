// Package config loads the gate's settings from the environment.
//
// Values come from process environment variables; cmd/ binaries load an
// optional .env file into the environment first. Every key has a default, so
// an empty environment yields a working local setup (JSON profile store, file
// audit log, whisper.cpp server on localhost).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. Servers warn about it.
const DefaultJWTSecret = "vocalgate-development-secret"

// Config holds all configuration for the gate.
type Config struct {
	Port     string `mapstructure:"PORT" validate:"required"`
	LogLevel string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	ProfileStore         string `mapstructure:"PROFILE_STORE" validate:"oneof=json badger postgres"`
	ProfileStorePath     string `mapstructure:"PROFILE_STORE_PATH" validate:"required_unless=ProfileStore postgres"`
	ProfileStoreRecovery string `mapstructure:"PROFILE_STORE_RECOVERY" validate:"oneof=lenient strict"`

	AuditLog     string `mapstructure:"AUDIT_LOG" validate:"oneof=file postgres"`
	AuditLogPath string `mapstructure:"AUDIT_LOG_PATH" validate:"required_if=AuditLog file"`

	DBURL    string `mapstructure:"DB_URL" validate:"required_if=ProfileStore postgres,required_if=AuditLog postgres"`
	RedisURL string `mapstructure:"REDIS_URL"`

	SampleRate    int `mapstructure:"SAMPLE_RATE" validate:"gt=0"`
	RecordSeconds int `mapstructure:"RECORD_SECONDS" validate:"gt=0"`

	BaseThreshold     float64       `mapstructure:"BASE_THRESHOLD" validate:"gt=0,lte=1"`
	AdaptiveThreshold bool          `mapstructure:"ADAPTIVE_THRESHOLD"`
	MaxAttempts       int           `mapstructure:"MAX_ATTEMPTS" validate:"gt=0"`
	Cooldown          time.Duration `mapstructure:"COOLDOWN" validate:"gt=0"`

	TextMatchStrategy string `mapstructure:"TEXT_MATCH_STRATEGY" validate:"oneof=subset exact"`
	FeatureStrategy   string `mapstructure:"FEATURE_STRATEGY" validate:"oneof=basic enhanced"`

	Transcriber      string `mapstructure:"TRANSCRIBER" validate:"oneof=whisper-http whisper-native"`
	WhisperURL       string `mapstructure:"WHISPER_URL" validate:"required_if=Transcriber whisper-http"`
	WhisperModelPath string `mapstructure:"WHISPER_MODEL_PATH" validate:"required_if=Transcriber whisper-native"`
	WhisperLanguage  string `mapstructure:"WHISPER_LANGUAGE"`
	WhisperRetries   int    `mapstructure:"WHISPER_RETRIES" validate:"gte=0,lte=10"`

	JWTSecret            string        `mapstructure:"JWT_SECRET" validate:"required"`
	SessionTTL           time.Duration `mapstructure:"SESSION_TTL" validate:"gt=0"`
	RefreshTTL           time.Duration `mapstructure:"REFRESH_TTL" validate:"gt=0"`
	OperatorUsername     string        `mapstructure:"OPERATOR_USERNAME" validate:"required"`
	OperatorPasswordHash string        `mapstructure:"OPERATOR_PASSWORD_HASH"`
	OperatorTOTPSecret   string        `mapstructure:"OPERATOR_TOTP_SECRET"`
}

var defaults = map[string]any{
	"PORT":                   "8080",
	"LOG_LEVEL":              "info",
	"PROFILE_STORE":          "json",
	"PROFILE_STORE_PATH":     "data/voice_profiles.json",
	"PROFILE_STORE_RECOVERY": "lenient",
	"AUDIT_LOG":              "file",
	"AUDIT_LOG_PATH":         "data/access_log.txt",
	"DB_URL":                 "",
	"REDIS_URL":              "",
	"SAMPLE_RATE":            16000,
	"RECORD_SECONDS":         5,
	"BASE_THRESHOLD":         0.8,
	"ADAPTIVE_THRESHOLD":     true,
	"MAX_ATTEMPTS":           3,
	"COOLDOWN":               "5m",
	"TEXT_MATCH_STRATEGY":    "subset",
	"FEATURE_STRATEGY":       "basic",
	"TRANSCRIBER":            "whisper-http",
	"WHISPER_URL":            "http://localhost:8081",
	"WHISPER_MODEL_PATH":     "",
	"WHISPER_LANGUAGE":       "en",
	"WHISPER_RETRIES":        1,
	"JWT_SECRET":             DefaultJWTSecret,
	"SESSION_TTL":            "15m",
	"REFRESH_TTL":            "24h",
	"OPERATOR_USERNAME":      "operator",
	"OPERATOR_PASSWORD_HASH": "",
	"OPERATOR_TOTP_SECRET":   "",
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// RecordDuration is the length of one captured utterance.
func (c *Config) RecordDuration() time.Duration {
	return time.Duration(c.RecordSeconds) * time.Second
}

// NewLogger builds the process logger at the configured level.
func (c *Config) NewLogger() *slog.Logger {
	var lvl slog.Level
	switch c.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
