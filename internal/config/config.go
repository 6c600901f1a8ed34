// Package config loads the service configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/copyleftdev/glassopt/internal/loads"
	"github.com/copyleftdev/glassopt/internal/optimization"
	"github.com/copyleftdev/glassopt/internal/oracle"
	"github.com/copyleftdev/glassopt/internal/preflight"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Storage struct {
		Type string `env:"STORE_TYPE" envDefault:"memory"`
		Path string `env:"STORE_PATH" envDefault:"data/glassopt.db"`
	}
	Oracle struct {
		DeflectionURL string        `env:"ORACLE_DEFLECTION_URL" envDefault:"http://localhost:8081/predict"`
		StressURL     string        `env:"ORACLE_STRESS_URL" envDefault:"http://localhost:8082/predict"`
		Token         string        `env:"ORACLE_TOKEN"`
		Timeout       time.Duration `env:"ORACLE_TIMEOUT" envDefault:"5s"`
		MaxUDL        float64       `env:"ORACLE_MAX_UDL" envDefault:"25000"`
		Retries       int           `env:"ORACLE_RETRIES" envDefault:"0"`
	}
	Loads struct {
		PointLoadSize float64 `env:"POINT_LOAD_SIZE" envDefault:"0.1"`
	}
	Optimization struct {
		MaxRunTimeSeconds      float64 `env:"OPT_MAX_RUN_TIME_SECONDS" envDefault:"120"`
		MaxStagnantGenerations int     `env:"OPT_MAX_STAGNANT_GENERATIONS" envDefault:"10"`
		MinPopulation          int     `env:"OPT_MIN_POPULATION" envDefault:"20"`
		MaxPopulation          int     `env:"OPT_MAX_POPULATION" envDefault:"40"`
		MaxConcurrentRuns      int     `env:"OPT_MAX_CONCURRENT_RUNS" envDefault:"4"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	if cfg.Storage.Type == "sqlite" {
		// Ensure the data directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// OracleConfig returns the prediction client settings.
func (c *Config) OracleConfig() oracle.Config {
	return oracle.Config{
		DeflectionURL: c.Oracle.DeflectionURL,
		StressURL:     c.Oracle.StressURL,
		Token:         c.Oracle.Token,
		Timeout:       c.Oracle.Timeout,
		MaxUDL:        c.Oracle.MaxUDL,
		Retries:       c.Oracle.Retries,
	}
}

// LoadsConfig returns the load aggregation assumptions.
func (c *Config) LoadsConfig() loads.Config {
	return loads.Config{PointLoadSize: c.Loads.PointLoadSize}
}

// Limits returns the preflight range with the configured footprint.
func (c *Config) Limits() preflight.Limits {
	lim := preflight.DefaultLimits()
	lim.PointLoadSize = c.Loads.PointLoadSize
	return lim
}

// DefaultSettings returns the run policy a job starts from before its own
// settings are applied.
func (c *Config) DefaultSettings() optimization.Settings {
	s := optimization.DefaultSettings()
	s.MaxRunTimeSeconds = c.Optimization.MaxRunTimeSeconds
	s.MaxStagnantGenerations = c.Optimization.MaxStagnantGenerations
	s.MinPopulation = c.Optimization.MinPopulation
	s.MaxPopulation = c.Optimization.MaxPopulation
	return s
}
