package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vk/genmaths/internal/app"
	"github.com/vk/genmaths/internal/config"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/render"
)

// Exit codes.
const (
	ExitFailed = 1 // at least one method or input failed
	ExitUsage  = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// ExploreCommand is the subcommand starting the interactive explorer.
const ExploreCommand = "explore"

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
//
// Options are layered: defaults, then the configuration file (-config, or
// genmaths.hcl in the working directory when present), then GENMATHS_*
// environment variables, then the flags given on the command line.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	explore := len(args) > 0 && args[0] == ExploreCommand
	if explore {
		args = args[1:]
	}

	flagSet := flag.NewFlagSet("genmaths", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
genmaths - analyzes generic numeric code into constant-folded step plans.

Usage:
  genmaths [options] PATH...
  genmaths explore [options]

Arguments:
  PATH
    A Go package directory, a .go or .hcl file, or a directory tree holding
    them. Go functions marked //genmaths:specialize and HCL method blocks
    are analyzed.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaults := config.Defaults()
	typesFlag := flagSet.String("types", numeric.FormatList(defaults.PossibleTypes), "Comma-separated target types (generic_maths_possible_types).")
	configFlag := flagSet.String("config", "", "Path to the configuration file. Defaults to ./"+config.FileName+" when present.")
	formatFlag := flagSet.String("format", string(defaults.Format), "Plan output format. Options: 'text', 'hcl', 'json', 'toml'.")
	emitFlag := flagSet.Bool("emit", defaults.Emit, "Write <package>_genmaths.go files with specialized Go code.")
	refoldFlag := flagSet.Bool("refold", defaults.Refold, "Fold constants again after inlining.")
	workersFlag := flagSet.Int("workers", defaults.Workers, "Number of methods analyzed concurrently. 0 uses every CPU.")
	watchFlag := flagSet.Bool("watch", false, "Analyze again whenever an input file changes.")
	colorFlag := flagSet.Bool("color", false, "Color diagnostics.")
	historyFlag := flagSet.String("history", defaultHistory(), "History file of the explorer. Empty disables history.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err)
	}
	slog.Debug("Arguments parsed successfully.")

	paths := flagSet.Args()
	if len(paths) == 0 && !explore {
		slog.Debug("No input path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if len(paths) > 0 && explore {
		return nil, false, usageError("explore takes no paths")
	}

	opts := defaults
	configPath := *configFlag
	if configPath == "" {
		if _, err := os.Stat(config.FileName); err == nil {
			configPath = config.FileName
		}
	}
	if configPath != "" {
		if diags := config.LoadFile(configPath, &opts, nil); diags.HasErrors() {
			return nil, false, usageError("%s", diags.Error())
		}
		slog.Debug("Configuration file applied.", "path", configPath)
	}
	if err := opts.ApplyEnv(); err != nil {
		return nil, false, usageError("%s", err)
	}

	var flagErr error
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "types":
			types, err := numeric.ParseList(*typesFlag)
			if err != nil {
				flagErr = fmt.Errorf("invalid -types: %w", err)
				return
			}
			opts.PossibleTypes = types
		case "format":
			format, err := render.ParseFormat(*formatFlag)
			if err != nil {
				flagErr = fmt.Errorf("invalid -format: %w", err)
				return
			}
			opts.Format = format
		case "emit":
			opts.Emit = *emitFlag
		case "refold":
			opts.Refold = *refoldFlag
		case "workers":
			opts.Workers = *workersFlag
		}
	})
	if flagErr != nil {
		return nil, false, usageError("%s", flagErr)
	}

	cfg, err := app.NewConfig(app.Config{
		Paths:       paths,
		Options:     opts,
		LogFormat:   strings.ToLower(*logFormatFlag),
		LogLevel:    strings.ToLower(*logLevelFlag),
		Color:       *colorFlag,
		Watch:       *watchFlag,
		Explore:     explore,
		HistoryPath: *historyFlag,
	})
	if err != nil {
		return nil, false, usageError("%s", err)
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}

func defaultHistory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".genmaths_history")
}

// CheckReport turns a run with failures into an ExitError.
func CheckReport(r *app.Report) error {
	if r.OK() {
		return nil
	}
	failed := r.Failed()
	if failed == 0 {
		return &ExitError{Code: ExitFailed, Message: "some inputs could not be loaded"}
	}
	return &ExitError{
		Code:    ExitFailed,
		Message: strconv.Itoa(failed) + " of " + strconv.Itoa(len(r.Results)) + " methods could not be analyzed",
	}
}
