// Package config loads process settings from the environment (optionally via
// a .env file) and the persona file that shapes the generator.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrMissingToken is returned when the Discord bot token is not configured.
var ErrMissingToken = errors.New("DISCORD_TOKEN is not set")

// Config holds the environment-driven settings.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`

	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	PersonaPath string `env:"PERSONA_PATH" envDefault:"config/config.json"`
	MemoryPath  string `env:"MEMORY_PATH" envDefault:"data/memory.json"`

	HistorySize         int           `env:"HISTORY_SIZE" envDefault:"20"`
	JoinThreshold       int           `env:"JOIN_THRESHOLD" envDefault:"10"`
	InactivityTimeout   time.Duration `env:"INACTIVITY_TIMEOUT" envDefault:"30m"`
	WatchPeriod         time.Duration `env:"WATCH_PERIOD" envDefault:"5m"`
	InactiveChannelName string        `env:"INACTIVE_CHANNEL_NAME" envDefault:"meme-bot"`
	Keywords            []string      `env:"KEYWORDS" envSeparator:"," envDefault:"david,bisbal,buleria,bulería,camina y,babel,almeria,almería,maquinas,máquinas,makinas,latino"`
	ActivityWorkers     int           `env:"ACTIVITY_WORKERS" envDefault:"2"`
	LLMRPS              float64       `env:"LLM_RPS" envDefault:"1"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// Load reads .env when present and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the numeric settings.
func (c *Config) Validate() error {
	switch {
	case c.HistorySize <= 0:
		return fmt.Errorf("HISTORY_SIZE must be positive, got %d", c.HistorySize)
	case c.JoinThreshold <= 0:
		return fmt.Errorf("JOIN_THRESHOLD must be positive, got %d", c.JoinThreshold)
	case c.InactivityTimeout <= 0:
		return fmt.Errorf("INACTIVITY_TIMEOUT must be positive, got %s", c.InactivityTimeout)
	case c.WatchPeriod <= 0:
		return fmt.Errorf("WATCH_PERIOD must be positive, got %s", c.WatchPeriod)
	case c.ActivityWorkers <= 0:
		return fmt.Errorf("ACTIVITY_WORKERS must be positive, got %d", c.ActivityWorkers)
	case c.LLMRPS <= 0:
		return fmt.Errorf("LLM_RPS must be positive, got %v", c.LLMRPS)
	}
	return nil
}

// RequireDiscord reports ErrMissingToken when the bot cannot log in.
func (c *Config) RequireDiscord() error {
	if c.DiscordToken == "" {
		return ErrMissingToken
	}
	return nil
}
