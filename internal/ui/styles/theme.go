// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme (the ui.theme config values).
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the panel.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// FRAME
	// ==========================================================================

	Title       lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	TabGap      lipgloss.Style
	Footer      lipgloss.Style
	Muted       lipgloss.Style

	// ==========================================================================
	// EDITORS
	// ==========================================================================

	Editor        lipgloss.Style
	EditorFocused lipgloss.Style
	Label         lipgloss.Style
	Output        lipgloss.Style

	// ==========================================================================
	// STATUS LINE
	// ==========================================================================

	StatusValid   lipgloss.Style
	StatusInvalid lipgloss.Style
	StatusPending lipgloss.Style
	StatusEmpty   lipgloss.Style

	// ==========================================================================
	// JSON PREVIEW
	// ==========================================================================

	LineNumber      lipgloss.Style
	LineNumberError lipgloss.Style
	Caret           lipgloss.Style

	// ==========================================================================
	// DIFF
	// ==========================================================================

	DiffEqual      lipgloss.Style
	DiffDelete     lipgloss.Style
	DiffInsert     lipgloss.Style
	DiffDeleteSpan lipgloss.Style
	DiffInsertSpan lipgloss.Style
	DiffFiller     lipgloss.Style
	DiffSeparator  lipgloss.Style

	// ==========================================================================
	// HELP
	// ==========================================================================

	HelpBox lipgloss.Style
}

// NewTheme builds a theme for mode (auto, dark or light). Auto asks the
// terminal for its background; the explicit modes override detection for
// every AdaptiveColor rendered afterwards.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Title = lipgloss.NewStyle().Foreground(Cyan).Bold(true).Padding(0, 1)
	t.TabActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true).
		Padding(0, 2)
	t.TabInactive = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceBright).
		Padding(0, 2)
	t.TabGap = lipgloss.NewStyle().Padding(0, 0)
	t.Footer = lipgloss.NewStyle().Foreground(TextMuted).Padding(0, 1)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	t.Editor = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim)
	t.EditorFocused = t.Editor.BorderForeground(Purple)
	t.Label = lipgloss.NewStyle().Foreground(TextSecondary).Bold(true)
	t.Output = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.StatusValid = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.StatusInvalid = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.StatusPending = lipgloss.NewStyle().Foreground(Amber).Italic(true)
	t.StatusEmpty = lipgloss.NewStyle().Foreground(TextMuted)

	t.LineNumber = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Right).
		MarginRight(1)
	t.LineNumberError = t.LineNumber.Foreground(Rose).Bold(true)
	t.Caret = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	t.DiffEqual = lipgloss.NewStyle().Foreground(TextPrimary)
	t.DiffDelete = lipgloss.NewStyle().Foreground(Rose).Background(DiffDeleteBg)
	t.DiffInsert = lipgloss.NewStyle().Foreground(Emerald).Background(DiffInsertBg)
	t.DiffDeleteSpan = t.DiffDelete.Background(DiffDeleteSpanBg).Bold(true)
	t.DiffInsertSpan = t.DiffInsert.Background(DiffInsertSpanBg).Bold(true)
	t.DiffFiller = lipgloss.NewStyle().Background(DiffFillerBg)
	t.DiffSeparator = lipgloss.NewStyle().Foreground(OverlayDim)

	t.HelpBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)
}

// SetSize records the current terminal dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// LayoutMode is the breakpoint used to pick stacked or side-by-side layouts.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// GetLayoutMode returns the breakpoint for the current width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}
