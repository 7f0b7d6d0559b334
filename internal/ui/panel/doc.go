// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package panel implements the interactive toolpanel TUI.
//
// The panel is a single Bubble Tea model with one tab per tool: JSON, Diff,
// Text, Base64 and Time. Edits in the JSON tab are fed to a
// schedule.Scheduler; its results come back into Update as ValidationMsg
// through a buffered channel that a blocking tea.Cmd drains and re-arms.
//
// # Usage
//
//	m := panel.New(styles.NewTheme(cfg.UI.Theme), cfg, panel.WithRecorder(store))
//	defer m.Close()
//	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
package panel
