package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"smartkitchen/internal/alerts"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides
const (
	EnvAPIURL    = "SMARTKITCHEN_API_URL"
	EnvDBPath    = "SMARTKITCHEN_DB_PATH"
	EnvJWTSecret = "SMARTKITCHEN_JWT_SECRET"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config represents the application configuration
type Config struct {
	LogLevel string `yaml:"log_level"`

	Server struct {
		Port         int      `yaml:"port"`
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"server"`

	Backend struct {
		URL          string        `yaml:"url"`
		Timeout      time.Duration `yaml:"timeout"`
		PollInterval time.Duration `yaml:"poll_interval"`
	} `yaml:"backend"`

	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	MetricsConfig struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`

	Thresholds alerts.Thresholds `yaml:"thresholds"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{LogLevel: "info"}
	cfg.Server.Port = 8080
	cfg.Server.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	cfg.Backend.URL = "http://localhost:5000"
	cfg.Backend.Timeout = 10 * time.Second
	cfg.Backend.PollInterval = 5 * time.Minute
	cfg.Database.Driver = DriverSQLite
	cfg.Database.URL = "smartkitchen.db"
	cfg.MetricsConfig.Enabled = true
	cfg.MetricsConfig.Port = 9090
	cfg.MetricsConfig.Path = "/metrics"
	cfg.Thresholds = alerts.DefaultThresholds()
	return cfg
}

// Load reads the YAML file at path over the defaults, then applies .env and
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("Config file %s not found, using defaults", path)
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.URL = v
		if strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://") {
			c.Database.Driver = DriverPostgres
		}
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Auth.JWTSecret = v
	}
}

// Validate checks the configuration for values the server cannot start with
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend url is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.Thresholds.BandLow > c.Thresholds.BandHigh {
		return fmt.Errorf("stock band low (%d) exceeds band high (%d)", c.Thresholds.BandLow, c.Thresholds.BandHigh)
	}
	return nil
}

// AuthEnabled reports whether write endpoints require a token
func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}
