package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/boxwire/internal/app"
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
	flagSet := flag.NewFlagSet("boxwire", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Boxwire - A cooperative runtime for box-and-wire dataflow programs.

Usage:
  boxwire [options] [PROGRAM_PATH]

Arguments:
  PROGRAM_PATH
    Path to a single .hcl or .yaml file, or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	programFlag := flagSet.String("program", "", "Path to the program file or directory.")
	pFlag := flagSet.String("p", "", "Path to the program file or directory (shorthand).")
	saveFlag := flagSet.String("save", "", "Write the program to this file on shutdown (.hcl or .yaml).")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	editorURLFlag := flagSet.String("editor-url", "", "Socket.IO URL of the editor to mirror the program to.")
	editorNSFlag := flagSet.String("editor-namespace", "", "Socket.IO namespace used on the editor connection.")
	uiDelayFlag := flagSet.Duration("ui-delay", 0, "Longest time UI notifications may be deferred. 0 uses the default.")
	warnSliceFlag := flagSet.Duration("warn-slice", 0, "Slice duration that logs a warning. 0 uses the default.")
	longSliceFlag := flagSet.Duration("long-slice", 0, "Slice duration above which a box is logged as an error. 0 uses the default.")
	serveFlag := flagSet.Bool("serve", false, "Keep running after the program goes idle, until interrupted.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *programFlag != "" {
		path = *programFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Program path determined.", "path", path)

	if path == "" {
		slog.Debug("No program path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if *healthPortFlag < 0 || *healthPortFlag > 65535 {
		return nil, false, &ExitError{Code: 2, Message: "invalid healthcheck-port: must be between 0 and 65535"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ProgramPath:     path,
		SavePath:        *saveFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		EditorURL:       *editorURLFlag,
		EditorNamespace: *editorNSFlag,
		MaxUIDelay:      *uiDelayFlag,
		WarnSlice:       *warnSliceFlag,
		LongSlice:       *longSliceFlag,
		Serve:           *serveFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
