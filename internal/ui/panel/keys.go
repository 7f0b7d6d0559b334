// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/toolpanel/internal/ui/components"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the panel. Editing keys not listed
// here go to the focused editor.
type KeyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Help    key.Binding
	HelpAlt key.Binding
	Back    key.Binding
	Quit    key.Binding
	Copy    key.Binding

	// JSON tab
	Format      key.Binding
	Compress    key.Binding
	ValidateNow key.Binding

	// Diff tab
	Compare   key.Binding
	Swap      key.Binding
	FocusPane key.Binding
	ScrollUp  key.Binding
	ScrollDn  key.Binding

	// Text, Base64 and Time tabs
	NextOp key.Binding
	Cycle  key.Binding
	Run    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous tab")),
		Help:    key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		HelpAlt: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help (results view)")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to editing")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Copy:    key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy output")),

		Format:      key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "format")),
		Compress:    key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "compress")),
		ValidateNow: key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "validate now")),

		Compare:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "compare")),
		Swap:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "swap sides")),
		FocusPane: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "other side")),
		ScrollUp:  key.NewBinding(key.WithKeys("up", "pgup", "k"), key.WithHelp("up/pgup", "scroll up")),
		ScrollDn:  key.NewBinding(key.WithKeys("down", "pgdown", "j"), key.WithHelp("down/pgdn", "scroll down")),

		NextOp: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "next operation")),
		Cycle:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "variant / unit")),
		Run:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "run")),
	}
}

// shortHelp returns the footer bindings for a tab.
func (k KeyMap) shortHelp(tab Tab, showingDiff bool) []key.Binding {
	switch tab {
	case TabJSON:
		return []key.Binding{k.Format, k.Compress, k.ValidateNow, k.Copy, k.NextTab, k.Help}
	case TabDiff:
		if showingDiff {
			return []key.Binding{k.ScrollUp, k.ScrollDn, k.Swap, k.Back, k.Copy, k.HelpAlt}
		}
		return []key.Binding{k.Compare, k.Swap, k.FocusPane, k.NextTab, k.Help}
	case TabText, TabTime:
		return []key.Binding{k.NextOp, k.Run, k.Copy, k.NextTab, k.Help}
	default:
		return []key.Binding{k.NextOp, k.Cycle, k.Run, k.Copy, k.NextTab, k.Help}
	}
}

// helpSections groups every binding for the help overlay.
func (k KeyMap) helpSections() []components.HelpSection {
	return []components.HelpSection{
		{Title: "General", Bindings: []key.Binding{k.NextTab, k.PrevTab, k.Copy, k.Help, k.HelpAlt, k.Back, k.Quit}},
		{Title: "JSON", Bindings: []key.Binding{k.Format, k.Compress, k.ValidateNow}},
		{Title: "Diff", Bindings: []key.Binding{k.Compare, k.Swap, k.FocusPane, k.ScrollUp, k.ScrollDn}},
		{Title: "Text, Base64, Time", Bindings: []key.Binding{k.NextOp, k.Cycle, k.Run}},
	}
}
