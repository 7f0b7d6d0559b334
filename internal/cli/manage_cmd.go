// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeranaias/toolpanel/internal/config"
	"github.com/jeranaias/toolpanel/internal/export"
	"github.com/jeranaias/toolpanel/internal/history"
)

// errHistoryDisabled is returned by history commands when recording is off.
var errHistoryDisabled = errors.New("run history is disabled (history.enabled = false)")

// =============================================================================
// HISTORY
// =============================================================================

func (a *app) historyCmd() *cobra.Command {
	var (
		kind  string
		limit int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.requireHistory()
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context(), history.Kind(kind), limit)
			if err != nil {
				return err
			}
			return a.emit(cmd, entries, func(w io.Writer) {
				writeEntries(w, entries)
			})
		},
	}
	list.Flags().StringVarP(&kind, "kind", "k", "", "Only runs of this kind (validate, diff, format, ...)")
	list.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show one run",
		Args:  argsRange(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.requireHistory()
			if err != nil {
				return err
			}
			e, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(cmd, e, func(w io.Writer) {
				fmt.Fprintf(w, "ID:       %s\n", e.ID)
				fmt.Fprintf(w, "Kind:     %s\n", e.Kind)
				fmt.Fprintf(w, "Source:   %s\n", e.Source)
				fmt.Fprintf(w, "Status:   %s\n", e.Status)
				fmt.Fprintf(w, "Summary:  %s\n", e.Summary)
				fmt.Fprintf(w, "Duration: %s\n", e.Duration)
				fmt.Fprintf(w, "When:     %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		Args:  argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.requireHistory()
			if err != nil {
				return err
			}
			n, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd, map[string]int64{"deleted": n}, func(w io.Writer) {
				printOK(w, "deleted %d run(s)", n)
			})
		},
	}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the run history",
		Long: `Recent validate, format, diff and tool runs are recorded with their
outcome summary (never the input text). "history" alone is "history list".`,
		Args: argsRange(0, 0),
		RunE: list.RunE,
	}
	cmd.Flags().AddFlagSet(list.Flags())
	cmd.AddCommand(list, show, clearCmd, a.historyExportCmd())
	return cmd
}

func (a *app) historyExportCmd() *cobra.Command {
	var (
		format string
		dir    string
		kind   string
		limit  int
		theme  string
		open   bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the run history as a JSON, Markdown or HTML report",
		Example: `  toolpanel history export --format md
  toolpanel history export --format html --dir reports --open`,
		Args: argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := &export.Options{
				OutputDir:       dir,
				OpenAfterExport: open,
				IncludeMetadata: true,
				Theme:           theme,
			}
			exporter, err := export.ForFormat(format, opts)
			if err != nil {
				return &UsageError{Reason: err.Error()}
			}
			store, err := a.requireHistory()
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context(), history.Kind(kind), limit)
			if err != nil {
				return err
			}

			title := "toolpanel runs"
			if kind != "" {
				title = "toolpanel " + kind + " runs"
			}
			path, err := export.ExportToFile(export.NewReport(title, entries), exporter, opts)
			if err != nil {
				return err
			}
			return a.emit(cmd, map[string]any{"path": path, "entries": len(entries)}, func(w io.Writer) {
				printOK(w, "exported %d run(s) to %s", len(entries), path)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "md", "Report format: "+strings.Join(export.Formats(), ", "))
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the report to")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only runs of this kind")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries (0 for all)")
	cmd.Flags().StringVar(&theme, "theme", "dark", "HTML theme: dark or light")
	cmd.Flags().BoolVar(&open, "open", false, "Open the report in the default application")
	return cmd
}

func (a *app) requireHistory() (*history.Store, error) {
	if !a.cfg.History.Enabled {
		return nil, errHistoryDisabled
	}
	store := a.history()
	if store == nil {
		return nil, fmt.Errorf("run history unavailable: %w", a.storeErr)
	}
	return store, nil
}

func writeEntries(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, mutedColor.Sprint("No runs recorded."))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tKIND\tSOURCE\tSTATUS\tSUMMARY\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format("01-02 15:04:05"),
			e.Kind, e.Source, e.Status, truncate(e.Summary, 60), shortID(e.ID))
	}
	tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

// =============================================================================
// CONFIG
// =============================================================================

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
		Long: `Configuration is read from ~/.toolpanel/config.toml (or config.yaml,
config.json) and TOOLPANEL_* environment variables. Keys use dot notation,
for example json.indent or server.port.`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.emit(cmd, a.cfg, func(w io.Writer) {
				fmt.Fprintln(w, a.cfg.String())
			})
		},
	}

	get := &cobra.Command{
		Use:   "get KEY",
		Short: "Print one configuration value",
		Args:  argsRange(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.cfg.Get(args[0])
			if err != nil {
				return &UsageError{Reason: err.Error()}
			}
			return a.emit(cmd, map[string]any{"key": args[0], "value": v}, func(w io.Writer) {
				fmt.Fprintln(w, v)
			})
		},
	}

	set := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change a value and save the config file",
		Args:  argsRange(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Clone()
			if err := cfg.Set(args[0], args[1]); err != nil {
				return &UsageError{Reason: err.Error()}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			path, err := a.saveConfig(cfg)
			if err != nil {
				return err
			}
			return a.emit(cmd, map[string]string{"key": args[0], "value": args[1], "path": path}, func(w io.Writer) {
				printOK(w, "%s = %s (saved to %s)", args[0], args[1], path)
			})
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.configFile()
			if err != nil {
				return err
			}
			return a.emit(cmd, map[string]string{"path": p}, func(w io.Writer) {
				fmt.Fprintln(w, p)
			})
		},
	}

	keys := &cobra.Command{
		Use:   "keys",
		Short: "List every configuration key",
		Args:  argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			all := config.GetAllKeys()
			return a.emit(cmd, all, func(w io.Writer) {
				fmt.Fprintln(w, strings.Join(all, "\n"))
			})
		},
	}

	cmd.AddCommand(show, get, set, path, keys)
	return cmd
}

func (a *app) configFile() (string, error) {
	if a.configPath != "" {
		return filepath.Abs(a.configPath)
	}
	return config.ConfigPathTOML()
}

// saveConfig writes cfg in the format of the file it was loaded from.
func (a *app) saveConfig(cfg *config.Config) (string, error) {
	path, err := a.configFile()
	if err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = config.SaveYAML(cfg, path)
	case ".json":
		err = config.SaveJSON(cfg, path)
	default:
		err = config.SaveTOML(cfg, path)
	}
	return path, err
}

// =============================================================================
// VERSION
// =============================================================================

// versionData is the --json payload of version.
type versionData struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  argsRange(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOut {
				return NewJSONResponse("version", versionData{
					Version:   Version,
					Commit:    GitCommit,
					BuildDate: BuildDate,
					GoVersion: runtime.Version(),
					Platform:  runtime.GOOS + "/" + runtime.GOARCH,
				}).Write(cmd.OutOrStdout())
			}
			return runVersion(cmd, args)
		},
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "toolpanel v%s\n", Version)
	fmt.Fprintf(out, "Commit: %s\n", GitCommit)
	fmt.Fprintf(out, "Built: %s\n", BuildDate)
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}
