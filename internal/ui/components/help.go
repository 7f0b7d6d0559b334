// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/toolpanel/internal/ui/styles"
)

// HelpSection is one titled group of key bindings.
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// HelpView renders key bindings as a markdown reference.
type HelpView struct {
	theme    *styles.Theme
	sections []HelpSection
}

// NewHelpView creates a help view over sections.
func NewHelpView(theme *styles.Theme, sections ...HelpSection) *HelpView {
	return &HelpView{theme: theme, sections: sections}
}

// Markdown returns the unrendered reference. Disabled bindings are skipped.
func (h *HelpView) Markdown() string {
	var b strings.Builder
	b.WriteString("# Keys\n")
	for _, s := range h.sections {
		fmt.Fprintf(&b, "\n## %s\n\n| Key | Action |\n| --- | --- |\n", s.Title)
		for _, kb := range s.Bindings {
			if !kb.Enabled() {
				continue
			}
			help := kb.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", help.Key, help.Desc)
		}
	}
	return b.String()
}

// Render renders the reference with Glamour at width columns. The raw
// markdown is returned if rendering fails.
func (h *HelpView) Render(width int) string {
	if width < 20 {
		width = 20
	}
	style := "light"
	if h.theme.IsDark {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return h.Markdown()
	}
	out, err := renderer.Render(h.Markdown())
	if err != nil {
		return h.Markdown()
	}
	return strings.Trim(out, "\n")
}
