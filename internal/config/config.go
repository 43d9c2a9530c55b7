package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"PORT"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		TTL      string `yaml:"ttl" env:"REDIS_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	Source struct {
		URL     string `yaml:"url" env:"SOURCE_URL"`
		Limit   int    `yaml:"limit" env:"SOURCE_LIMIT"`
		Timeout string `yaml:"timeout" env:"SOURCE_TIMEOUT"`
		TTL     string `yaml:"ttl" env:"SOURCE_TTL"`
	} `yaml:"source"`
	Quiz struct {
		QuestionTime  int    `yaml:"question_time" env:"QUIZ_QUESTION_TIME"`
		TickInterval  string `yaml:"tick_interval" env:"QUIZ_TICK_INTERVAL"`
		FeedbackDelay string `yaml:"feedback_delay" env:"QUIZ_FEEDBACK_DELAY"`
		Seed          int64  `yaml:"seed" env:"QUIZ_SEED"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file is not an error; the environment and defaults still apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
