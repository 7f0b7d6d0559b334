// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/toolpanel/internal/codec"
	"github.com/jeranaias/toolpanel/internal/history"
	"github.com/jeranaias/toolpanel/internal/texttools"
	"github.com/jeranaias/toolpanel/internal/timeconv"
)

// =============================================================================
// TEXT
// =============================================================================

func (a *app) textCmd() *cobra.Command {
	names := make([]string, 0, len(texttools.Ops()))
	for _, info := range texttools.Ops() {
		names = append(names, string(info.Op))
	}

	cmd := &cobra.Command{
		Use:       "text OP [FILE]",
		Short:     "Apply a text transformation",
		Long:      "Apply a text transformation to FILE, stdin or --input.\n\nOperations: " + strings.Join(names, ", ") + ".",
		Example:   "  toolpanel text upper notes.txt\n  echo '  padded  ' | toolpanel text trim",
		Args:      argsRange(1, 2),
		ValidArgs: names,
	}
	inline := addInputFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		op := texttools.Op(args[0])
		text, _, err := readInput(cmd, args[1:], inline)
		if err != nil {
			return err
		}

		started := time.Now()
		out, err := texttools.Apply(op, text)
		if err != nil {
			return &UsageError{Reason: err.Error() + " (see 'toolpanel text list')"}
		}
		a.record(history.KindText, "ok", string(op), time.Since(started))

		return a.emit(cmd, map[string]string{"op": string(op), "output": out}, func(w io.Writer) {
			fmt.Fprintln(w, out)
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List text operations",
		Args:  argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.emit(cmd, texttools.Ops(), func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				for _, info := range texttools.Ops() {
					fmt.Fprintf(tw, "%s\t%s\n", info.Op, info.Description)
				}
				tw.Flush()
			})
		},
	})

	count := &cobra.Command{
		Use:   "count [FILE]",
		Short: "Count characters, words and non-empty lines",
		Args:  argsRange(0, 1),
	}
	countInline := addInputFlag(count)
	count.RunE = func(cmd *cobra.Command, args []string) error {
		text, _, err := readInput(cmd, args, countInline)
		if err != nil {
			return err
		}
		c := texttools.Count(text)
		return a.emit(cmd, c, func(w io.Writer) {
			fmt.Fprintln(w, c.String())
		})
	}
	cmd.AddCommand(count)
	return cmd
}

// =============================================================================
// BASE64
// =============================================================================

func (a *app) base64Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "base64",
		Short: "Encode or decode base64",
		Long: `Encode text to base64 or decode it back.

Variants: std (standard alphabet, padded), url (URL alphabet, padded),
raw (standard alphabet, unpadded) and uri (percent-encode the text first,
as browsers do before btoa).`,
	}
	cmd.AddCommand(a.base64Sub("encode", "Encode text to base64", false))
	cmd.AddCommand(a.base64Sub("decode", "Decode base64 to text", true))
	return cmd
}

func (a *app) base64Sub(name, short string, decode bool) *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   name + " [FILE]",
		Short: short,
		Args:  argsRange(0, 1),
	}
	inline := addInputFlag(cmd)
	cmd.Flags().StringVar(&variant, "variant", "std", "Alphabet variant: std, url, raw, uri")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := codec.ParseVariant(variant)
		if err != nil {
			return &UsageError{Reason: err.Error()}
		}
		text, _, err := readInput(cmd, args, inline)
		if err != nil {
			return err
		}

		started := time.Now()
		summary := name + " " + v.String()
		var out string
		if decode {
			out, err = codec.Decode(text, v)
		} else {
			out = codec.Encode(strings.TrimSuffix(text, "\n"), v)
		}
		if err != nil {
			a.record(history.KindBase64, "error", summary, time.Since(started))
			return err
		}
		a.record(history.KindBase64, "ok", summary, time.Since(started))

		return a.emit(cmd, map[string]string{"variant": v.String(), "output": out}, func(w io.Writer) {
			fmt.Fprintln(w, out)
		})
	}
	return cmd
}

// =============================================================================
// TIME
// =============================================================================

// timeData is the --json payload of the time commands.
type timeData struct {
	Input     string `json:"input,omitempty"`
	Unit      string `json:"unit"`
	Date      string `json:"date,omitempty"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

func (a *app) timeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Convert between Unix timestamps and dates",
		Long: `Convert Unix timestamps to dates and back.

Dates are printed as "2006-01-02 15:04:05" in local time unless --utc is
given. to-ts accepts that layout, RFC 3339 and a few common variants.`,
		Example: `  toolpanel time to-date 1700000000
  toolpanel time to-date --unit ms --utc 1700000000000
  toolpanel time to-ts "2024-01-02 03:04:05"
  toolpanel time now --unit ms`,
	}

	var (
		dateUnit string
		dateUTC  bool
	)
	toDate := &cobra.Command{
		Use:   "to-date TIMESTAMP",
		Short: "Convert a timestamp to a date",
		Args:  argsRange(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := unitFlag(dateUnit, args[0])
			if err != nil {
				return err
			}
			started := time.Now()
			out, err := timeconv.ToDate(args[0], unit, location(dateUTC))
			a.recordTime("to-date "+unit.String(), err, started)
			if err != nil {
				return err
			}
			return a.emit(cmd, timeData{Input: args[0], Unit: unit.String(), Date: out}, func(w io.Writer) {
				fmt.Fprintln(w, out)
			})
		},
	}
	toDate.Flags().StringVar(&dateUnit, "unit", "auto", "Timestamp unit: s, ms or auto")
	toDate.Flags().BoolVar(&dateUTC, "utc", false, "Print the date in UTC")

	var (
		tsUnit string
		tsUTC  bool
	)
	toTS := &cobra.Command{
		Use:   "to-ts DATE",
		Short: "Convert a date to a timestamp",
		Args:  argsRange(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := timeconv.ParseUnit(tsUnit)
			if err != nil {
				return &UsageError{Reason: err.Error()}
			}
			started := time.Now()
			ts, err := timeconv.ToTimestamp(args[0], unit, location(tsUTC))
			a.recordTime("to-ts "+unit.String(), err, started)
			if err != nil {
				return err
			}
			return a.emit(cmd, timeData{Input: args[0], Unit: unit.String(), Timestamp: &ts}, func(w io.Writer) {
				fmt.Fprintln(w, ts)
			})
		},
	}
	toTS.Flags().StringVar(&tsUnit, "unit", "s", "Timestamp unit: s or ms")
	toTS.Flags().BoolVar(&tsUTC, "utc", false, "Read dates without a zone as UTC")

	var nowUnit string
	now := &cobra.Command{
		Use:   "now",
		Short: "Print the current timestamp",
		Args:  argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			unit, err := timeconv.ParseUnit(nowUnit)
			if err != nil {
				return &UsageError{Reason: err.Error()}
			}
			ts := timeconv.Now(unit)
			return a.emit(cmd, timeData{Unit: unit.String(), Timestamp: &ts}, func(w io.Writer) {
				fmt.Fprintln(w, strconv.FormatInt(ts, 10))
			})
		},
	}
	now.Flags().StringVar(&nowUnit, "unit", "s", "Timestamp unit: s or ms")

	cmd.AddCommand(toDate, toTS, now)
	return cmd
}

// unitFlag resolves --unit, guessing from magnitude for "auto".
func unitFlag(name, value string) (timeconv.Unit, error) {
	if strings.EqualFold(name, "auto") {
		return timeconv.DetectUnit(value), nil
	}
	unit, err := timeconv.ParseUnit(name)
	if err != nil {
		return unit, &UsageError{Reason: err.Error()}
	}
	return unit, nil
}

func location(utc bool) *time.Location {
	if utc {
		return time.UTC
	}
	return time.Local
}

func (a *app) recordTime(summary string, err error, started time.Time) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	a.record(history.KindTime, status, summary, time.Since(started))
}
