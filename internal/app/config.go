package app

import (
	"errors"
	"fmt"

	"github.com/vk/genmaths/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths   []string // Go package directories, .go and .hcl files
	Options config.Options

	LogFormat string
	LogLevel  string
	// Color enables ANSI colors in diagnostics.
	Color bool
	// Watch re-runs the analysis whenever an input changes.
	Watch bool

	// Explore starts the interactive explorer instead of analyzing Paths.
	Explore     bool
	HistoryPath string
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 && !cfg.Explore {
		return nil, errors.New("at least one input path is required")
	}
	if cfg.Explore && cfg.Watch {
		return nil, errors.New("watch mode cannot be combined with the explorer")
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
