// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jeranaias/toolpanel/internal/diff"
	"github.com/jeranaias/toolpanel/internal/history"
	"github.com/jeranaias/toolpanel/internal/jsonfmt"
	"github.com/jeranaias/toolpanel/internal/locate"
	"github.com/jeranaias/toolpanel/internal/schedule"
	"github.com/jeranaias/toolpanel/internal/util"
	"github.com/jeranaias/toolpanel/internal/watch"
)

// validateData is the --json payload of validate.
type validateData struct {
	Source  string          `json:"source"`
	Outcome jsonfmt.Outcome `json:"outcome"`
}

// formatData is the --json payload of format and compress.
type formatData struct {
	Source  string          `json:"source"`
	Output  string          `json:"output,omitempty"`
	Written string          `json:"written,omitempty"`
	Outcome jsonfmt.Outcome `json:"outcome"`
}

// locateData is the --json payload of locate.
type locateData struct {
	Offset   int             `json:"offset"`
	Location locate.Location `json:"location"`
	Repaired bool            `json:"repaired"`
}

// jsonFlags are the formatting overrides shared by format and compress.
type jsonFlags struct {
	indent       int
	tabs         bool
	noWrap       bool
	removeEscape bool
	copy         bool
	output       string
}

func (f *jsonFlags) register(flags *pflag.FlagSet, withIndent bool) {
	if withIndent {
		flags.IntVar(&f.indent, "indent", 0, "Spaces per indent level (default from config)")
		flags.BoolVar(&f.tabs, "tabs", false, "Indent with tabs")
	}
	flags.BoolVar(&f.noWrap, "no-wrap", false, "Do not wrap bare fragments in braces")
	flags.BoolVar(&f.removeEscape, "remove-escape", false, "Strip one level of \\\" and \\\\ escaping first")
	flags.BoolVar(&f.copy, "copy", false, "Copy the result to the clipboard")
	flags.StringVarP(&f.output, "output", "o", "", "Write the result to FILE instead of stdout")
}

// validator builds a jsonfmt.Validator from config plus flag overrides.
func (a *app) validator(f *jsonFlags) (*jsonfmt.Validator, error) {
	opts := jsonfmt.Options{
		Indent:       a.cfg.IndentString(),
		AutoWrap:     a.cfg.JSON.AutoWrap,
		RemoveEscape: a.cfg.JSON.RemoveEscape,
	}
	if f != nil {
		if f.indent < 0 || f.indent > 8 {
			return nil, usageErrorf("--indent must be between 0 and 8, got %d", f.indent)
		}
		if f.indent > 0 {
			opts.Indent = strings.Repeat(" ", f.indent)
		}
		if f.tabs {
			opts.Indent = "\t"
		}
		if f.noWrap {
			opts.AutoWrap = false
		}
		if f.removeEscape {
			opts.RemoveEscape = true
		}
	}
	return jsonfmt.NewValidator(nil, opts), nil
}

// =============================================================================
// VALIDATE
// =============================================================================

func (a *app) validateCmd() *cobra.Command {
	var watchFile bool
	cmd := &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Validate JSON and report the error position",
		Long: `Validate JSON read from FILE, stdin or --input.

An invalid document exits with status 1 and prints the line and column of
the error with the offending line underneath. With --watch, FILE is
revalidated every time it is saved until interrupted.`,
		Example: `  toolpanel validate config.json
  echo '{"a": }' | toolpanel validate
  toolpanel validate --watch config.json`,
		Args: argsRange(0, 1),
	}
	inline := addInputFlag(cmd)
	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "Revalidate FILE whenever it changes")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if watchFile {
			if len(args) != 1 || args[0] == "-" {
				return usageErrorf("--watch needs a FILE")
			}
			return a.watchValidate(cmd, args[0])
		}

		text, name, err := readInput(cmd, args, inline)
		if err != nil {
			return err
		}
		v, _ := a.validator(nil)
		started := time.Now()
		outcome := v.Validate(text)
		a.record(history.KindValidate, outcome.Status.String(), name+": "+outcome.String(), time.Since(started))

		if err := a.emit(cmd, validateData{Source: name, Outcome: outcome}, func(w io.Writer) {
			printOutcome(w, name, text, outcome)
		}); err != nil {
			return err
		}
		if outcome.Status == jsonfmt.StatusInvalid {
			return silentExit(ExitInvalid)
		}
		return nil
	}
	return cmd
}

// watchValidate feeds saves of path through the debounce scheduler and prints
// each result until interrupted.
func (a *app) watchValidate(cmd *cobra.Command, path string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	v, _ := a.validator(nil)
	results := make(chan schedule.Result, 8)
	sched := schedule.New(v,
		schedule.WithDelay(time.Duration(a.cfg.JSON.DebounceMs)*time.Millisecond),
		schedule.WithLogger(a.logger),
		schedule.WithResultHandler(func(r schedule.Result) {
			select {
			case results <- r:
			case <-ctx.Done():
			}
		}),
	)
	defer sched.Close()

	fw, err := watch.New(path, sched, watch.WithLogger(a.logger))
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- fw.Run(ctx) }()

	if !a.jsonOut {
		fmt.Fprintln(out, mutedColor.Sprintf("Watching %s (Ctrl+C to stop)", path))
	}
	for {
		select {
		case r := <-results:
			if a.jsonOut {
				if err := NewJSONResponse("validate", validateData{Source: path, Outcome: r.Outcome}).Write(out); err != nil {
					return err
				}
				continue
			}
			fmt.Fprintln(out, mutedColor.Sprint(r.At.Format("15:04:05")))
			printOutcome(out, path, r.Text, r.Outcome)
		case err := <-errc:
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// printOutcome writes a one-line verdict and, for located errors, the
// offending line with a caret under the column.
func printOutcome(w io.Writer, name, text string, o jsonfmt.Outcome) {
	switch o.Status {
	case jsonfmt.StatusEmpty:
		printWarn(w, "%s: empty input", name)
	case jsonfmt.StatusValid:
		printOK(w, "%s: valid JSON", name)
	default:
		printFail(w, "%s: %s", name, o.String())
		if o.LocatesInput() {
			writeSnippet(w, text, *o.Location)
		}
	}
}

func writeSnippet(w io.Writer, text string, loc locate.Location) {
	lines := diff.SplitLines(text)
	if loc.Line < 1 || loc.Line > len(lines) {
		return
	}
	line := util.ExpandTabs(lines[loc.Line-1], 4)
	num := strconv.Itoa(loc.Line)

	runes := []rune(lines[loc.Line-1])
	prefix := runes[:min(max(loc.Column-1, 0), len(runes))]
	pad := runewidth.StringWidth(util.ExpandTabs(string(prefix), 4))

	fmt.Fprintf(w, "  %s | %s\n", num, line)
	fmt.Fprintf(w, "  %s | %s%s\n", strings.Repeat(" ", len(num)), strings.Repeat(" ", pad), errColor.Sprint("^"))
}

// =============================================================================
// FORMAT / COMPRESS
// =============================================================================

func (a *app) formatCmd() *cobra.Command {
	var f jsonFlags
	cmd := &cobra.Command{
		Use:   "format [FILE]",
		Short: "Pretty-print JSON",
		Long: `Re-serialize JSON with indentation, preserving key order.

Bare fragments such as "a": 1 are wrapped in braces first unless --no-wrap
is given. Invalid input is reported like validate and exits with status 1.`,
		Example: `  toolpanel format data.json
  toolpanel format --indent 4 -o pretty.json data.json
  pbpaste | toolpanel format --copy`,
		Args: argsRange(0, 1),
	}
	inline := addInputFlag(cmd)
	f.register(cmd.Flags(), true)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := a.validator(&f)
		if err != nil {
			return err
		}
		return a.reformat(cmd, args, inline, &f, history.KindFormat, v.Format)
	}
	return cmd
}

func (a *app) compressCmd() *cobra.Command {
	var f jsonFlags
	cmd := &cobra.Command{
		Use:     "compress [FILE]",
		Aliases: []string{"minify"},
		Short:   "Remove insignificant whitespace from JSON",
		Args:    argsRange(0, 1),
	}
	inline := addInputFlag(cmd)
	f.register(cmd.Flags(), false)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := a.validator(&f)
		if err != nil {
			return err
		}
		return a.reformat(cmd, args, inline, &f, history.KindCompress, v.Compress)
	}
	return cmd
}

func (a *app) reformat(cmd *cobra.Command, args []string, inline *string, f *jsonFlags,
	kind history.Kind, run func(string) (string, jsonfmt.Outcome)) error {
	text, name, err := readInput(cmd, args, inline)
	if err != nil {
		return err
	}

	started := time.Now()
	out, outcome := run(text)
	a.record(kind, outcome.Status.String(), name+": "+outcome.String(), time.Since(started))

	if !outcome.Valid() {
		if err := a.emit(cmd, formatData{Source: name, Outcome: outcome}, func(w io.Writer) {
			printOutcome(cmd.ErrOrStderr(), name, text, outcome)
		}); err != nil {
			return err
		}
		return silentExit(ExitInvalid)
	}

	data := formatData{Source: name, Outcome: outcome}
	if f.output != "" {
		if err := util.AtomicWriteFile(f.output, []byte(out+"\n"), 0644); err != nil {
			return err
		}
		data.Written = f.output
	} else {
		data.Output = out
	}
	if f.copy {
		if err := clipboard.WriteAll(out); err != nil {
			a.logger.Warn().Err(err).Msg("clipboard unavailable")
			printWarn(cmd.ErrOrStderr(), "could not copy to clipboard: %v", err)
		}
	}

	return a.emit(cmd, data, func(w io.Writer) {
		if f.output == "" {
			fmt.Fprintln(w, out)
		} else {
			printOK(cmd.ErrOrStderr(), "wrote %s", f.output)
		}
		if outcome.Wrapped {
			printWarn(cmd.ErrOrStderr(), "input was wrapped in braces")
		}
	})
}

// =============================================================================
// ESCAPE / UNESCAPE
// =============================================================================

func (a *app) escapeCmd() *cobra.Command {
	return a.stringCmd("escape", "Escape \" and \\ so text can be embedded in a JSON string", jsonfmt.Escape)
}

func (a *app) unescapeCmd() *cobra.Command {
	return a.stringCmd("unescape", "Strip one level of \\\" and \\\\ escaping", jsonfmt.Unescape)
}

func (a *app) stringCmd(name, short string, fn func(string) string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " [FILE]",
		Short: short,
		Args:  argsRange(0, 1),
	}
	inline := addInputFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		text, _, err := readInput(cmd, args, inline)
		if err != nil {
			return err
		}
		out := fn(strings.TrimSuffix(text, "\n"))
		return a.emit(cmd, map[string]string{"output": out}, func(w io.Writer) {
			fmt.Fprintln(w, out)
		})
	}
	return cmd
}

// =============================================================================
// LOCATE
// =============================================================================

func (a *app) locateCmd() *cobra.Command {
	var (
		raw     bool
		message string
	)
	cmd := &cobra.Command{
		Use:   "locate [FILE] [OFFSET]",
		Short: "Convert a character offset into a line and column",
		Long: `Convert a zero-based character offset in FILE (or stdin) into a 1-based
line and column. The offset may come from an error message via --message,
for example "Unexpected token } in JSON at position 42".

By default the column is repaired for errors reported just past a line
break, which usually means a missing comma on the previous line. Use --raw
for the plain conversion.`,
		Example: `  toolpanel locate data.json 42
  toolpanel locate data.json --message "Unexpected token in JSON at position 42"`,
		Args: argsRange(0, 2),
	}
	inline := addInputFlag(cmd)
	cmd.Flags().BoolVar(&raw, "raw", false, "Skip the missing-comma heuristic")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Take the offset from this error message")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		offset, args, err := locateOffset(cmd, args, message)
		if err != nil {
			return err
		}
		text, _, err := readInput(cmd, args, inline)
		if err != nil {
			return err
		}

		started := time.Now()
		loc := locate.Locate(text, offset)
		data := locateData{Offset: offset, Location: loc}
		if !raw {
			data.Location = locate.LocateWithHeuristic(text, offset)
			data.Repaired = data.Location != loc
		}
		a.record(history.KindLocate, "ok", fmt.Sprintf("offset %d: %s", offset, data.Location), time.Since(started))

		return a.emit(cmd, data, func(w io.Writer) {
			fmt.Fprintf(w, "line %d, column %d\n", data.Location.Line, data.Location.Column)
			if data.Repaired {
				fmt.Fprintln(w, mutedColor.Sprintf("(offset points past a line break; reported at end of line %d)", data.Location.Line))
			}
			writeSnippet(w, text, data.Location)
		})
	}
	return cmd
}

// locateOffset takes the offset from --message or the last argument and
// returns the remaining arguments.
func locateOffset(cmd *cobra.Command, args []string, message string) (int, []string, error) {
	if cmd.Flags().Changed("message") {
		offset, ok := locate.ExtractOffset(message)
		if !ok {
			return 0, nil, usageErrorf("no offset found in message %q", message)
		}
		if len(args) > 1 {
			return 0, nil, usageErrorf("locate takes at most a FILE with --message")
		}
		return offset, args, nil
	}
	if len(args) == 0 {
		return 0, nil, usageErrorf("locate needs an OFFSET or --message")
	}
	offset, err := strconv.Atoi(args[len(args)-1])
	if err != nil || offset < 0 {
		return 0, nil, usageErrorf("invalid offset %q", args[len(args)-1])
	}
	return offset, args[:len(args)-1], nil
}
