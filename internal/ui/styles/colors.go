// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// All colors are AdaptiveColor so lipgloss picks the light or dark variant
// from the detected (or configured) background.

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Purple - Active tab, focused editor border
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - Titles, key hints, line:column references
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - Valid outcomes, inserted lines
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - Invalid outcomes, deleted lines, error caret
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Pending validation, warnings
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE AND TEXT
// =============================================================================

var (
	SurfaceDim    = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}
	SurfaceBright = lipgloss.AdaptiveColor{Light: "#FAFAFA", Dark: "#313244"}
	Overlay       = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}
	OverlayDim    = lipgloss.AdaptiveColor{Light: "#D4D4D4", Dark: "#45475A"}

	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
	TextInverse   = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
)

// =============================================================================
// DIFF COLORS
// =============================================================================

// Row backgrounds are subtle; the changed span inside a row gets the
// stronger variant.
var (
	DiffDeleteBg     = lipgloss.AdaptiveColor{Light: "#FEE2E2", Dark: "#3B1219"}
	DiffDeleteSpanBg = lipgloss.AdaptiveColor{Light: "#FECACA", Dark: "#881337"}
	DiffInsertBg     = lipgloss.AdaptiveColor{Light: "#D1FAE5", Dark: "#0B2E22"}
	DiffInsertSpanBg = lipgloss.AdaptiveColor{Light: "#A7F3D0", Dark: "#064E3B"}
	DiffFillerBg     = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#232334"}
)

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet holds the text markers shown next to status colors so
// status is readable without color.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Pending string
	Empty   string
}

// StatusIndicators are ASCII so they render on any terminal.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Pending: "[..]",
	Empty:   "[ ]",
}

// =============================================================================
// RENDER HELPERS
// =============================================================================

// RenderSuccess renders a message with the success marker.
func RenderSuccess(message string) string {
	return lipgloss.NewStyle().Foreground(Emerald).Bold(true).
		Render(StatusIndicators.Success + " " + message)
}

// RenderError renders a message with the error marker.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Rose).Bold(true).
		Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a message with the warning marker.
func RenderWarning(message string) string {
	return lipgloss.NewStyle().Foreground(Amber).
		Render(StatusIndicators.Warning + " " + message)
}

// RenderPending renders a message with the pending marker.
func RenderPending(message string) string {
	return lipgloss.NewStyle().Foreground(Amber).Italic(true).
		Render(StatusIndicators.Pending + " " + message)
}

// RenderMuted renders secondary text.
func RenderMuted(message string) string {
	return lipgloss.NewStyle().Foreground(TextMuted).
		Render(StatusIndicators.Empty + " " + message)
}
