package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envConfig mirrors Config for environment parsing. Durations accept the
// usual Go syntax ("1h", "90m").
type envConfig struct {
	EndpointAddr          string        `env:"ENDPOINT_ADDR"`
	DatabaseDSN           string        `env:"DATABASE_DSN"`
	SecretKey             string        `env:"SECRET_KEY"`
	TokenValidityDuration time.Duration `env:"TOKEN_VALIDITY_DURATION"`
	MarketDataURL         string        `env:"MARKET_DATA_URL"`
	MarketDataAPIKey      string        `env:"MARKET_DATA_API_KEY"`
	LogLevel              string        `env:"LOG_LEVEL"`
}

// parseEnv overlays Config with values from the process environment. A .env
// file in the working directory is loaded first, if present, without
// overriding variables already exported.
func parseEnv(config *Config) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	c := envConfig{}
	if err := env.Parse(&c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidityDuration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration
	}
	if c.MarketDataURL != "" {
		config.MarketDataURL = c.MarketDataURL
	}
	if c.MarketDataAPIKey != "" {
		config.MarketDataAPIKey = c.MarketDataAPIKey
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
