package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv        string `envconfig:"APP_ENV" default:"development"`
	Port          string `envconfig:"PORT" default:"8080"`
	DBPath        string `envconfig:"DB_PATH" default:"./cvp.db"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	SessionSecret string `envconfig:"SESSION_SECRET"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"true"`

	APIRateLimit       int      `envconfig:"API_RATE_LIMIT" default:"120"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// Load reads a local .env file when present and then the process environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path.
func LoadFrom(dotenvPath string) (Config, error) {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv %s: %w", dotenvPath, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	if cfg.APIRateLimit <= 0 {
		return Config{}, fmt.Errorf("API_RATE_LIMIT must be greater than 0")
	}
	if cfg.SessionSecret == "" && !cfg.IsDev() {
		return Config{}, fmt.Errorf("SESSION_SECRET must be set when APP_ENV is %q", cfg.AppEnv)
	}

	return cfg, nil
}

// IsDev reports whether the application runs in development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == "development"
}

// Warnings lists settings that are unset but expected outside local development.
func (c Config) Warnings() []string {
	var warnings []string
	if c.AdminEmail == "" {
		warnings = append(warnings, "ADMIN_EMAIL is not set")
	}
	if c.AdminPassword == "" {
		warnings = append(warnings, "ADMIN_PASSWORD is not set")
	}
	if c.SessionSecret == "" {
		warnings = append(warnings, "SESSION_SECRET is not set, sessions will not survive a restart")
	}
	return warnings
}
