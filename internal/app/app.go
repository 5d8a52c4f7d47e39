package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/genmaths/internal/analysis"
	"github.com/vk/genmaths/internal/ctxlog"
	"github.com/vk/genmaths/internal/explore"
	"github.com/vk/genmaths/internal/processor"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp is the constructor for the main application. Plans are written to
// outW; logs and diagnostics go to errW.
func NewApp(outW, errW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	logger.Debug("Logger configured successfully.")
	return &App{outW: outW, errW: errW, logger: logger, config: cfg}
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) analyzer() *analysis.Analyzer {
	p := processor.DefaultPipeline()
	if a.config.Options.Refold {
		p = p.WithRefold()
	}
	return analysis.New(p)
}

// Explore runs the interactive explorer on the terminal.
func (a *App) Explore(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	return explore.Run(ctx, explore.NewSession(a.analyzer()), a.outW, a.config.HistoryPath)
}
