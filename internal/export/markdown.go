// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports reports as a Markdown table.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// frontmatter is the YAML header of a Markdown report.
type frontmatter struct {
	Title     string         `yaml:"title"`
	Generated string         `yaml:"generated"`
	Runs      int            `yaml:"runs"`
	Statuses  map[string]int `yaml:"statuses"`
	Generator string         `yaml:"generator"`
}

// Export converts a report to Markdown.
func (e *MarkdownExporter) Export(r *Report) ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	if e.options.IncludeMetadata {
		header, err := yaml.Marshal(frontmatter{
			Title:     r.Title,
			Generated: r.GeneratedAt.Format(time.RFC3339),
			Runs:      len(r.Entries),
			Statuses:  r.Counts(),
			Generator: "toolpanel",
		})
		if err != nil {
			return nil, fmt.Errorf("frontmatter: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(header)
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(r.Title))

	if e.options.IncludeMetadata {
		fmt.Fprintf(&sb, "- **Generated**: %s\n", formatTimestamp(r.GeneratedAt))
		fmt.Fprintf(&sb, "- **Runs**: %d\n", len(r.Entries))
		counts := r.Counts()
		statuses := make([]string, 0, len(counts))
		for s := range counts {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		for _, s := range statuses {
			fmt.Fprintf(&sb, "- **%s**: %d\n", escapeMarkdown(s), counts[s])
		}
		sb.WriteString("\n")
	}

	sb.WriteString("| When | Kind | Source | Status | Summary | Duration |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, entry := range r.Entries {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
			formatTimestamp(entry.CreatedAt),
			entry.Kind,
			escapeCell(entry.Source),
			escapeCell(entry.Status),
			escapeCell(entry.Summary),
			formatDuration(entry.Duration),
		)
	}

	fmt.Fprintf(&sb, "\n*Exported from toolpanel on %s*\n",
		r.GeneratedAt.Format("January 2, 2006 at 3:04 PM"))
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeMarkdown escapes characters that would break headings.
func escapeMarkdown(s string) string {
	return strings.NewReplacer(
		"#", `\#`,
		"*", `\*`,
		"_", `\_`,
		"[", `\[`,
		"]", `\]`,
	).Replace(s)
}

// escapeCell keeps a value inside one table cell.
func escapeCell(s string) string {
	s = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	return escapeMarkdown(s)
}
