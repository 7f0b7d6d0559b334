// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the rendering components used by the toolpanel TUI.

Components are plain renderers: they hold state set by the panel model and
return strings. Scrolling and input handling stay in the panel.

# Components

DiffView (diffview.go) - Two-pane alignment view with intra-line highlights.
JSONView (jsonview.go) - Highlighted JSON preview with an error caret gutter.
HelpView (help.go) - Key binding reference rendered as markdown with Glamour.

# Usage

	view := components.NewDiffView(theme)
	view.SetResult(diff.AlignText(left, right))
	view.SetWidth(width)
	vp.SetContent(view.Render())
*/
package components
