// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/toolpanel/internal/diff"
	"github.com/jeranaias/toolpanel/internal/history"
	"github.com/jeranaias/toolpanel/internal/ui/components"
	"github.com/jeranaias/toolpanel/internal/ui/styles"
)

// diffData is the --json payload of diff.
type diffData struct {
	Left    string       `json:"left"`
	Right   string       `json:"right"`
	Summary string       `json:"summary"`
	Stats   diff.Stats   `json:"stats"`
	Entries []diff.Entry `json:"entries,omitempty"`
	Unified string       `json:"unified,omitempty"`
}

func (a *app) diffCmd() *cobra.Command {
	var (
		unified bool
		context int
		swap    bool
		stats   bool
		side    bool
	)
	cmd := &cobra.Command{
		Use:   "diff LEFT RIGHT",
		Short: "Compare two texts line by line",
		Long: `Compare two files line by line and list every line as common (" "),
left only ("-") or right only ("+").

Lines are matched in lockstep: a differing pair is reported as a deletion
followed by an insertion, and later lines are not re-synchronized. Use "-"
for one side to read it from stdin.

Exits with status 1 when the texts differ, like diff(1).`,
		Example: `  toolpanel diff old.txt new.txt
  toolpanel diff -u --context 1 old.txt new.txt
  toolpanel diff --side a.json b.json`,
		Args: argsRange(2, 2),
	}
	cmd.Flags().BoolVarP(&unified, "unified", "u", false, "Print hunks in unified format")
	cmd.Flags().IntVarP(&context, "context", "U", -1, "Unchanged lines around each unified hunk (default from config)")
	cmd.Flags().BoolVar(&swap, "swap", false, "Exchange LEFT and RIGHT before comparing")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print only the summary counts")
	cmd.Flags().BoolVar(&side, "side", false, "Render side by side with inline highlights")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if unified && side {
			return usageErrorf("--unified and --side cannot be combined")
		}
		if context < 0 {
			context = a.cfg.Diff.ContextLines
		}

		leftName, rightName := args[0], args[1]
		if leftName == "-" && rightName == "-" {
			return usageErrorf("only one side can be read from stdin")
		}
		if swap {
			leftName, rightName = rightName, leftName
		}
		left, err := readSide(cmd, leftName)
		if err != nil {
			return err
		}
		right, err := readSide(cmd, rightName)
		if err != nil {
			return err
		}

		started := time.Now()
		result := diff.AlignText(left, right)
		took := time.Since(started)

		status := "identical"
		if !result.Identical() {
			status = "modified"
		}
		summary := result.Summary()
		a.record(history.KindDiff, status, leftName+" vs "+rightName+": "+summary, took)

		data := diffData{
			Left:    leftName,
			Right:   rightName,
			Summary: summary,
			Stats:   diff.Tally(result),
		}
		switch {
		case stats:
		case unified:
			data.Unified = diff.FormatUnified(leftName, rightName, result, context)
		default:
			data.Entries = result.Entries
		}

		err = a.emit(cmd, data, func(w io.Writer) {
			switch {
			case stats:
				fmt.Fprintln(w, summary)
			case unified:
				writeUnified(w, data.Unified)
			case side:
				view := components.NewDiffView(styles.NewTheme(a.cfg.UI.Theme))
				view.SetWidth(GetTerminalWidth())
				view.SetLineNumbers(a.cfg.UI.ShowLineNumbers)
				view.SetInline(a.cfg.Diff.Inline)
				view.SetResult(result)
				fmt.Fprintln(w, view.Render())
			default:
				writeListing(w, result)
				fmt.Fprintln(w, mutedColor.Sprint(summary))
			}
		})
		if err != nil {
			return err
		}
		if !result.Identical() {
			return silentExit(ExitInvalid)
		}
		return nil
	}
	return cmd
}

func readSide(cmd *cobra.Command, name string) (string, error) {
	text, _, err := readInput(cmd, []string{name}, nil)
	return text, err
}

// writeListing prints every entry with its origin prefix.
func writeListing(w io.Writer, r *diff.Result) {
	for _, e := range r.Entries {
		line := e.Origin.Prefix() + " " + e.Content
		switch e.Origin {
		case diff.OriginDelete:
			line = delColor.Sprint(line)
		case diff.OriginInsert:
			line = addColor.Sprint(line)
		}
		fmt.Fprintln(w, line)
	}
}

// writeUnified colors the lines of a unified diff by their first character.
func writeUnified(w io.Writer, text string) {
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprint(w, mutedColor.Sprint(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprint(w, hunkColor.Sprint(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprint(w, addColor.Sprint(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprint(w, delColor.Sprint(line))
		default:
			fmt.Fprint(w, line)
		}
	}
}
