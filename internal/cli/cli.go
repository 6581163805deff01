package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/nk/planweave/internal/app"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("planweave", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
PlanWeave - A deterministic task dependency resolver and priority scheduler.

Usage:
  planweave COMMAND [options]

Commands:
  validate         Check the plan for unresolved references and cycles.
  order            Print the full execution order, highest score first.
  batches          Print parallel execution batches of bounded width.
  critical-path    Print completion depths and the critical path length.
  ready            Print the tasks that are ready right now.
  blockers KEY     Print the blocking dependencies of one task.

Options:
`)
		flagSet.PrintDefaults()
	}

	planFlag := flagSet.String("plan", "", "Path to a plan file or a directory of plan files.")
	pFlag := flagSet.String("p", "", "Path to a plan file or directory (shorthand).")
	maxParallelFlag := flagSet.Int("max-parallel", 0, "Batch width for the batches command. 0 defers to the plan.")
	bestEffortFlag := flagSet.Bool("best-effort", false, "Schedule cyclic plans by collapsing each cycle.")
	outputFlag := flagSet.String("output", "text", "Result format. Options: 'text' or 'json'.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	// The command and its optional key come first, before the flags; the
	// standard flag package stops at the first positional argument otherwise.
	command := ""
	taskKey := ""
	rest := args
	if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
		command = rest[0]
		rest = rest[1:]
		if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
			taskKey = rest[0]
			rest = rest[1:]
		}
	}

	if err := flagSet.Parse(rest); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if command == "" {
		slog.Debug("No command provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	slog.Debug("Command determined.", "command", command, "task_key", taskKey)

	path := *planFlag
	if path == "" {
		path = *pFlag
	}
	if path == "" {
		return nil, false, &ExitError{Code: 2, Message: "a plan path is required: use --plan or -p"}
	}

	outputFormat := strings.ToLower(*outputFlag)
	if outputFormat != "text" && outputFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid output: must be 'text' or 'json'"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Command:     command,
		TaskKey:     taskKey,
		PlanPath:    path,
		MaxParallel: *maxParallelFlag,
		BestEffort:  *bestEffortFlag,
		Output:      outputFormat,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
