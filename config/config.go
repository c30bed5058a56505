/*
Package config loads server configuration from the environment.

PURPOSE:
  Small env-backed config layer. A .env file in the working directory is
  loaded first when present, so dev setups need neither exported variables
  nor flags. Command-line flags in cmd/server override these values.

VARIABLES:
  PORT        HTTP server port (default: 8080)
  DB_PATH     SQLite database path (default: leave.db, ":memory:" supported)
  APP_ENV     Environment name: development, production (default: development)
  SEED_DEMO   "true" seeds the standard leave types and a calendar year
*/
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the server configuration.
type Config struct {
	Port     int
	DBPath   string
	Env      string
	SeedDemo bool
}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() *Config {
	// Missing .env is fine; env vars still apply.
	_ = godotenv.Load()

	return &Config{
		Port:     getEnvInt("PORT", 8080),
		DBPath:   getEnv("DB_PATH", "leave.db"),
		Env:      getEnv("APP_ENV", "development"),
		SeedDemo: getEnv("SEED_DEMO", "false") == "true",
	}
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
