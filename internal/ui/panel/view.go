// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/toolpanel/internal/schedule"
	"github.com/jeranaias/toolpanel/internal/texttools"
	"github.com/jeranaias/toolpanel/internal/ui/styles"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the panel.
func (m Model) View() string {
	var body string
	if m.showHelp {
		body = m.theme.HelpBox.Render(m.helpView.Render(m.width - 4))
	} else {
		switch m.tab {
		case TabJSON:
			body = m.viewJSON()
		case TabDiff:
			body = m.viewDiff()
		case TabText:
			body = m.viewText()
		case TabBase64:
			body = m.viewBase64()
		case TabTime:
			body = m.viewTime()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewTabs(),
		body,
		m.viewStatus(),
		m.theme.Footer.Render(m.help.ShortHelpView(m.keys.shortHelp(m.tab, m.showingDiff))),
	)
}

func (m Model) viewTabs() string {
	tabs := make([]string, 0, tabCount+1)
	tabs = append(tabs, m.theme.Title.Render("toolpanel"))
	for i := 0; i < tabCount; i++ {
		t := Tab(i)
		if t == m.tab {
			tabs = append(tabs, m.theme.TabActive.Render(t.String()))
		} else {
			tabs = append(tabs, m.theme.TabInactive.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) editor(ta textarea.Model) string {
	if ta.Focused() {
		return m.theme.EditorFocused.Render(ta.View())
	}
	return m.theme.Editor.Render(ta.View())
}

// viewStatus shows the last notice, or the JSON outcome on the JSON tab.
func (m Model) viewStatus() string {
	var line string
	switch {
	case m.notice != "" && m.noticeOK:
		line = styles.RenderSuccess(m.notice)
	case m.notice != "":
		line = styles.RenderError(m.notice)
	case m.tab == TabJSON && m.scheduler.State() == schedule.StatePending:
		line = styles.RenderPending("validating")
	case m.tab == TabJSON:
		line = m.jsonView.StatusLine()
	}
	return lipgloss.NewStyle().MaxWidth(max(m.width, 1)).Render(line)
}

func (m Model) viewJSON() string {
	preview := m.jsonPreview.View()
	if m.theme.GetLayoutMode() == styles.LayoutNarrow {
		return lipgloss.JoinVertical(lipgloss.Left, m.editor(m.jsonInput), preview)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.editor(m.jsonInput), preview)
}

func (m Model) viewDiff() string {
	if m.showingDiff {
		return m.diffPort.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.editor(m.left), m.editor(m.right))
}

// toolView stacks a label, the input editor and the output box.
func (m Model) toolView(label string, input textarea.Model, output string) string {
	box := m.theme.Output.Width(max(m.width-4, 10)).Render(output)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Label.Render(label),
		m.editor(input),
		box,
	)
}

func (m Model) viewText() string {
	info := texttools.Ops()[m.textOp]
	label := string(info.Op) + m.theme.Muted.Render("  "+info.Description)
	output := m.textOutput
	if output == "" {
		output = m.theme.Muted.Render(texttools.Count(m.textInput.Value()).String())
	}
	return m.toolView(label, m.textInput, output)
}

func (m Model) viewBase64() string {
	mode := "encode"
	if m.b64Decode {
		mode = "decode"
	}
	label := mode + m.theme.Muted.Render("  variant "+m.b64Variant.String())
	return m.toolView(label, m.b64Input, m.b64Output)
}

func (m Model) viewTime() string {
	label := timeModeNames[m.timeMode] + m.theme.Muted.Render("  unit "+m.timeUnit.String())
	return m.toolView(label, m.timeInput, strings.TrimSpace(m.timeOutput))
}
