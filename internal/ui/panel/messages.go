// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/toolpanel/internal/schedule"
)

// ValidationMsg carries a debounced validation result into Update.
type ValidationMsg struct {
	Result schedule.Result
}

// CopiedMsg reports the outcome of a clipboard write.
type CopiedMsg struct {
	Chars int
	Err   error
}

// waitForResult blocks until the scheduler delivers a result or the panel
// closes. Update re-arms it after every ValidationMsg.
func waitForResult(results <-chan schedule.Result, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case r := <-results:
			return ValidationMsg{Result: r}
		case <-done:
			return nil
		}
	}
}
