// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeranaias/toolpanel/internal/config"
	"github.com/jeranaias/toolpanel/internal/history"
	"github.com/jeranaias/toolpanel/internal/logging"
)

// Version information, set by main from build flags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// app holds the state shared by one invocation of the command tree.
type app struct {
	configPath string
	verbose    bool
	quiet      bool
	jsonOut    bool
	noColor    bool

	cfg    *config.Config
	logger zerolog.Logger
	source string

	store    *history.Store
	storeErr error
	opened   bool
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// run executes one command line against the given streams.
func run(args []string, in io.Reader, out, errOut io.Writer) int {
	return newApp("cli").execute(args, in, out, errOut)
}

func newApp(source string) *app {
	return &app{logger: zerolog.Nop(), source: source}
}

func (a *app) execute(args []string, in io.Reader, out, errOut io.Writer) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	cmd, err := root.ExecuteC()
	a.close()
	if err == nil {
		return ExitSuccess
	}

	if strings.HasPrefix(err.Error(), "unknown command ") {
		err = &UsageError{Reason: err.Error()}
	}
	code := GetExitCode(err)
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return code
	}
	if a.jsonOut {
		_ = NewJSONErrorResponse(commandName(cmd), err).Write(out)
	} else {
		printFail(errOut, "%v", err)
		if code == ExitUsageError && cmd != nil {
			fmt.Fprintf(errOut, "Run '%s --help' for usage.\n", cmd.CommandPath())
		}
	}
	return code
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "toolpanel",
		Short: "Text and JSON diagnostics: diff, validate, format and convert",
		Long: `toolpanel compares texts line by line, validates and formats JSON with
error locations, and bundles small text, base64 and timestamp tools.

Every tool is available as a command, over a local HTTP API (serve), in an
interactive terminal panel (panel) and in a line-editing shell (shell).`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default ~/.toolpanel/config.toml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output (debug logging)")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "Quiet mode (errors only)")
	flags.BoolVar(&a.jsonOut, "json", false, "Output JSON")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Reason: err.Error()}
	})

	root.AddCommand(
		a.diffCmd(),
		a.validateCmd(),
		a.formatCmd(),
		a.compressCmd(),
		a.escapeCmd(),
		a.unescapeCmd(),
		a.locateCmd(),
		a.textCmd(),
		a.base64Cmd(),
		a.timeCmd(),
		a.serveCmd(),
		a.panelCmd(),
		a.shellCmd(),
		a.historyCmd(),
		a.configCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads configuration and builds the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.noColor {
		ForceColorsEnabled(false)
	}

	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFromPath(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	config.SetGlobal(a.cfg)

	logCfg := a.cfg.Logging
	switch {
	case a.verbose:
		logCfg.Level = "debug"
	case a.quiet:
		logCfg.Level = "error"
	}

	builder := logging.NewBuilder().
		WithConfig(logCfg).
		WithConsole(cmd.ErrOrStderr()).
		WithNoColor(!ColorsEnabled()).
		WithGlobal()
	if cmd.Name() == "panel" {
		// Log lines would tear the alt screen.
		builder = builder.WithConsole(nil)
	}
	a.logger, err = builder.Build()
	if err != nil {
		return err
	}
	a.logger = a.logger.With().Str("command", commandName(cmd)).Logger()
	return nil
}

// history opens the run history on first use. It returns nil when history
// is disabled or cannot be opened; failures are logged, never fatal.
func (a *app) history() *history.Store {
	if a.opened {
		return a.store
	}
	a.opened = true
	if a.cfg == nil || !a.cfg.History.Enabled {
		return nil
	}

	path, err := a.cfg.HistoryPath()
	if err == nil {
		a.store, err = history.Open(path,
			history.WithMaxEntries(a.cfg.History.MaxEntries),
			history.WithLogger(a.logger),
		)
	}
	if err != nil {
		a.storeErr = err
		a.logger.Warn().Err(err).Msg("run history unavailable")
		return nil
	}
	return a.store
}

// record stores a run summary when history is enabled.
func (a *app) record(kind history.Kind, status, summary string, took time.Duration) {
	store := a.history()
	if store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := store.Record(ctx, history.Entry{
		Kind:     kind,
		Source:   a.source,
		Status:   status,
		Summary:  summary,
		Duration: took,
	})
	if err != nil {
		a.logger.Warn().Err(err).Str("kind", string(kind)).Msg("failed to record history")
	}
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Debug().Err(err).Msg("closing history")
		}
	}
}

// emit writes data as the JSON envelope in --json mode and otherwise calls
// human to print plain output.
func (a *app) emit(cmd *cobra.Command, data any, human func(w io.Writer)) error {
	if a.jsonOut {
		return NewJSONResponse(commandName(cmd), data).Write(cmd.OutOrStdout())
	}
	human(cmd.OutOrStdout())
	return nil
}

// commandName is the command path without the binary name.
func commandName(cmd *cobra.Command) string {
	if cmd == nil {
		return ""
	}
	path := cmd.CommandPath()
	if i := strings.IndexByte(path, ' '); i >= 0 {
		return path[i+1:]
	}
	return path
}

// argsRange is cobra.RangeArgs reporting a UsageError.
func argsRange(min, max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min || len(args) > max {
			if min == max {
				return usageErrorf("%s takes %d argument(s), got %d", cmd.Name(), min, len(args))
			}
			return usageErrorf("%s takes %d to %d arguments, got %d", cmd.Name(), min, max, len(args))
		}
		return nil
	}
}
