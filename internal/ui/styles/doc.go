// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the toolpanel TUI.
//
// Colors are lipgloss AdaptiveColor values; Theme groups the lipgloss styles
// used by the panel and its components and resolves light or dark rendering
// from the terminal or from the configured ui.theme.
//
// # Key Types
//
//   - Theme: All styles plus terminal capabilities and current size
//   - StatusIndicatorSet: ASCII markers that accompany status colors
//
// # Usage
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	theme.SetSize(msg.Width, msg.Height)
//	line := theme.StatusInvalid.Render("line 3, column 7")
package styles
