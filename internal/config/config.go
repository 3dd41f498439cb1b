package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Scoring mode selects how the analysis stage scores technologies.
const (
	ScoringDeterministic = "deterministic"
	ScoringAIDelegated   = "ai"
)

// Session store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig  `envPrefix:""`
	OpenAI  OpenAIConfig  `envPrefix:""`
	Geocode GeocodeConfig `envPrefix:""`
	DataAPI DataAPIConfig `envPrefix:""`
	Session SessionConfig `envPrefix:""`
	Scoring ScoringConfig `envPrefix:""`
	Logging LoggingConfig `envPrefix:""`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port           int    `env:"SERVER_PORT" envDefault:"8080"`
	GinMode        string `env:"GIN_MODE" envDefault:"release"`
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// OpenAIConfig holds the OpenAI-compatible API configuration for the
// text-generation collaborator.
type OpenAIConfig struct {
	APIKey      string        `env:"OPENAI_API_KEY"`
	APIBase     string        `env:"OPENAI_API_BASE" envDefault:"https://api.openai.com/v1"`
	Model       string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	Temperature float64       `env:"OPENAI_TEMPERATURE" envDefault:"0"`
	Timeout     time.Duration `env:"OPENAI_TIMEOUT" envDefault:"15s"`
}

// Enabled reports whether the AI collaborator is configured.
func (c OpenAIConfig) Enabled() bool { return c.APIKey != "" }

// GeocodeConfig holds the geocoding collaborator configuration.
type GeocodeConfig struct {
	APIBase string        `env:"GEOCODE_API_BASE" envDefault:"https://nominatim.openstreetmap.org"`
	Timeout time.Duration `env:"GEOCODE_TIMEOUT" envDefault:"10s"`
}

// DataAPIConfig holds the technical-summary collaborator configuration.
type DataAPIConfig struct {
	APIBase string        `env:"DATA_API_BASE" envDefault:"http://localhost:5000"`
	Timeout time.Duration `env:"DATA_API_TIMEOUT" envDefault:"10s"`
}

// SessionConfig holds session store configuration.
type SessionConfig struct {
	Store       string        `env:"SESSION_STORE" envDefault:"memory"`
	TTL         time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	DatabaseURL string        `env:"DATABASE_URL"`
}

// ScoringConfig selects the analysis scoring strategy.
type ScoringConfig struct {
	Mode string `env:"SCORING_MODE" envDefault:"deterministic"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Development bool `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Session.Store == StorePostgres && cfg.Session.DatabaseURL == "" {
		return nil, fmt.Errorf("SESSION_STORE=postgres requires DATABASE_URL")
	}

	return cfg, nil
}
