package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/genmaths/internal/app"
	"github.com/vk/genmaths/internal/cli"
	"github.com/vk/genmaths/internal/watch"
)

// main is the entrypoint for the genmaths application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	// The real main function handles errors and exit codes.
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("genmaths panicked: %v", r)
		}
	}()

	genmathsApp := app.NewApp(outW, errW, appConfig)

	switch {
	case appConfig.Explore:
		return genmathsApp.Explore(ctx)

	case appConfig.Watch:
		w, err := watch.New(watch.DefaultDebounce)
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Close()
		return genmathsApp.Watch(ctx, w)
	}

	report, err := genmathsApp.Run(ctx)
	if err != nil {
		return err
	}
	return cli.CheckReport(report)
}
