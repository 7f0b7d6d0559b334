// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports reports as a standalone page with embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a report to HTML.
func (e *HTMLExporter) Export(r *Report) ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	theme := "dark-theme"
	if e.options.Theme == "light" {
		theme = "light-theme"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", html.EscapeString(r.Title))
	sb.WriteString("    <meta name=\"generator\" content=\"toolpanel\">\n")
	fmt.Fprintf(&sb, "    <meta name=\"date\" content=\"%s\">\n", r.GeneratedAt.Format(time.RFC3339))
	sb.WriteString(css)
	fmt.Fprintf(&sb, "</head>\n<body class=\"%s\">\n<main>\n", theme)

	fmt.Fprintf(&sb, "<h1>%s</h1>\n", html.EscapeString(r.Title))
	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(r))
	}

	sb.WriteString("<table>\n<thead><tr><th>When</th><th>Kind</th><th>Source</th><th>Status</th><th>Summary</th><th>Duration</th></tr></thead>\n<tbody>\n")
	for _, entry := range r.Entries {
		fmt.Fprintf(&sb, "<tr><td>%s</td><td>%s</td><td>%s</td><td class=\"%s\">%s</td><td>%s</td><td>%s</td></tr>\n",
			formatTimestamp(entry.CreatedAt),
			html.EscapeString(string(entry.Kind)),
			html.EscapeString(entry.Source),
			statusClass(entry.Status),
			html.EscapeString(entry.Status),
			html.EscapeString(entry.Summary),
			formatDuration(entry.Duration),
		)
	}
	sb.WriteString("</tbody>\n</table>\n")

	fmt.Fprintf(&sb, "<footer>Exported from toolpanel on %s</footer>\n",
		html.EscapeString(r.GeneratedAt.Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("</main>\n</body>\n</html>\n")
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

func (e *HTMLExporter) renderHeader(r *Report) string {
	counts := r.Counts()
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)

	var sb strings.Builder
	sb.WriteString("<ul class=\"meta\">\n")
	fmt.Fprintf(&sb, "<li><b>Generated</b> %s</li>\n", formatTimestamp(r.GeneratedAt))
	fmt.Fprintf(&sb, "<li><b>Runs</b> %d</li>\n", len(r.Entries))
	for _, s := range statuses {
		fmt.Fprintf(&sb, "<li class=\"%s\"><b>%s</b> %d</li>\n", statusClass(s), html.EscapeString(s), counts[s])
	}
	sb.WriteString("</ul>\n")
	return sb.String()
}

// statusClass maps a run status to a CSS class.
func statusClass(status string) string {
	switch status {
	case "valid", "identical", "ok":
		return "good"
	case "invalid", "error":
		return "bad"
	case "modified":
		return "changed"
	}
	return "muted"
}

const css = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
            --font-mono: "SF Mono", Monaco, "Fira Code", monospace;
        }
        .dark-theme {
            --bg: #1a1b26; --bg-alt: #24283b; --text: #c0caf5; --muted: #565f89;
            --border: #414868; --good: #9ece6a; --bad: #f7768e; --changed: #e0af68;
        }
        .light-theme {
            --bg: #ffffff; --bg-alt: #f4f5f7; --text: #24292f; --muted: #6e7781;
            --border: #d0d7de; --good: #1a7f37; --bad: #cf222e; --changed: #9a6700;
        }
        body { background: var(--bg); color: var(--text); font-family: var(--font-sans); line-height: 1.5; }
        main { max-width: 1100px; margin: 0 auto; padding: 2rem 1rem; }
        h1 { font-size: 1.6rem; margin-bottom: 1rem; }
        .meta { list-style: none; display: flex; flex-wrap: wrap; gap: 1.5rem; margin-bottom: 1.5rem; color: var(--muted); }
        .meta b { color: var(--text); margin-right: .25rem; }
        table { width: 100%; border-collapse: collapse; font-size: .9rem; }
        th, td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid var(--border); vertical-align: top; }
        th { background: var(--bg-alt); }
        td:nth-child(5) { font-family: var(--font-mono); word-break: break-word; }
        .good { color: var(--good); }
        .bad { color: var(--bad); }
        .changed { color: var(--changed); }
        .muted { color: var(--muted); }
        footer { margin-top: 2rem; color: var(--muted); font-size: .8rem; }
    </style>
`
