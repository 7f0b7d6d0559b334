// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/toolpanel/internal/config"
)

// shellHistoryFile is kept in the config directory.
const shellHistoryFile = "shell_history"

// errUnterminatedQuote is returned by splitArgs.
var errUnterminatedQuote = errors.New("unterminated quote")

// prompter is the part of liner.State the shell loop uses.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// interactiveOnly commands cannot run inside the shell.
var interactiveOnly = map[string]bool{"shell": true, "panel": true, "serve": true}

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run toolpanel commands in a line-editing shell",
		Long: `Start an interactive shell that runs toolpanel commands without the
"toolpanel" prefix, with arrow-key history saved across sessions.

Pass text with --input, for example:  validate -i '{"a": 1}'
Type "help" for the command list and "exit" or Ctrl+D to leave.`,
		Args: argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			line := liner.NewLiner()
			line.SetCtrlCAborts(true)
			line.SetCompleter(completer(cmd.Root()))

			historyPath := shellHistoryPath()
			if f, err := os.Open(historyPath); err == nil {
				line.ReadHistory(f)
				f.Close()
			}
			defer func() {
				saveShellHistory(line, historyPath)
				line.Close()
			}()

			return a.shellLoop(line, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// shellLoop reads lines until exit, EOF or Ctrl+C, running each as a
// command line.
func (a *app) shellLoop(p prompter, out, errOut io.Writer) error {
	fmt.Fprintln(out, mutedColor.Sprint(`toolpanel shell - "help" lists commands, "exit" quits`))
	for {
		input, err := p.Prompt("toolpanel> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		p.AppendHistory(input)

		switch input {
		case "exit", "quit":
			return nil
		case "help":
			input = "--help"
		}

		args, err := splitArgs(input)
		if err != nil {
			printFail(errOut, "%v", err)
			continue
		}
		if interactiveOnly[args[0]] {
			printWarn(errOut, "%s is not available inside the shell", args[0])
			continue
		}
		code := a.runLine(args, out, errOut)
		a.logger.Debug().Strs("args", args).Int("exit_code", code).Msg("shell command")
	}
}

// runLine executes one command line with a fresh command tree, inheriting the
// shell's global flags.
func (a *app) runLine(args []string, out, errOut io.Writer) int {
	var inherited []string
	if a.configPath != "" {
		inherited = append(inherited, "--config", a.configPath)
	}
	if a.noColor {
		inherited = append(inherited, "--no-color")
	}
	if a.jsonOut {
		inherited = append(inherited, "--json")
	}
	if a.verbose {
		inherited = append(inherited, "--verbose")
	}
	if a.quiet {
		inherited = append(inherited, "--quiet")
	}
	return newApp("shell").execute(append(inherited, args...), strings.NewReader(""), out, errOut)
}

// completer completes the first word against the command names.
func completer(root *cobra.Command) liner.Completer {
	var names []string
	for _, c := range root.Commands() {
		if c.IsAvailableCommand() && !interactiveOnly[c.Name()] {
			names = append(names, c.Name())
		}
	}
	names = append(names, "exit", "help")
	sort.Strings(names)

	return func(line string) []string {
		if strings.ContainsRune(line, ' ') {
			return nil
		}
		var out []string
		for _, n := range names {
			if strings.HasPrefix(n, line) {
				out = append(out, n)
			}
		}
		return out
	}
}

func shellHistoryPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, shellHistoryFile)
}

func saveShellHistory(line *liner.State, path string) {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}

// splitArgs splits a command line into words. Single quotes keep text
// literally; double quotes allow \" and \\ escapes; a backslash outside
// quotes escapes the next character.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
		dqEsc   bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case dqEsc:
			if r != '"' && r != '\\' {
				cur.WriteRune('\\')
			}
			cur.WriteRune(r)
			dqEsc = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case quote == '"':
			switch r {
			case '"':
				quote = 0
			case '\\':
				dqEsc = true
			default:
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped, inWord = true, true
		case r == '\'' || r == '"':
			quote, inWord = r, true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 || escaped || dqEsc {
		return nil, errUnterminatedQuote
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}
