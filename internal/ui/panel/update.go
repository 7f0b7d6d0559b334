// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/toolpanel/internal/codec"
	"github.com/jeranaias/toolpanel/internal/diff"
	"github.com/jeranaias/toolpanel/internal/history"
	"github.com/jeranaias/toolpanel/internal/jsonfmt"
	"github.com/jeranaias/toolpanel/internal/texttools"
	"github.com/jeranaias/toolpanel/internal/timeconv"
)

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.Close()
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Back, m.keys.Help, m.keys.HelpAlt) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(Tab((int(m.tab) + 1) % tabCount))
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab(Tab((int(m.tab) + tabCount - 1) % tabCount))
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyCmd(m.output())
	}

	switch m.tab {
	case TabJSON:
		return m.handleJSONKey(msg)
	case TabDiff:
		return m.handleDiffKey(msg)
	default:
		return m.handleToolKey(msg)
	}
}

// forward passes a key to an editor and reports whether its text changed.
func forward(ta *textarea.Model, msg tea.Msg) (tea.Cmd, bool) {
	before := ta.Value()
	var cmd tea.Cmd
	*ta, cmd = ta.Update(msg)
	return cmd, ta.Value() != before
}

// =============================================================================
// JSON TAB
// =============================================================================

func (m Model) handleJSONKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ValidateNow):
		started := time.Now()
		res := m.scheduler.ValidateNow()
		m.applyOutcome(res.Text, res.Outcome)
		m.notice = ""
		return m, m.recordCmd(history.KindValidate, res.Outcome.Status.String(), res.Outcome.String(), time.Since(started))

	case key.Matches(msg, m.keys.Format):
		return m.reformat(history.KindFormat, "formatted", m.validator.Format)

	case key.Matches(msg, m.keys.Compress):
		return m.reformat(history.KindCompress, "compressed", m.validator.Compress)
	}

	cmd, changed := forward(&m.jsonInput, msg)
	if changed {
		m.scheduler.Edit(m.jsonInput.Value())
		m.notice = ""
	}
	return m, cmd
}

// reformat replaces the buffer with the re-serialized document when it
// parses. The new text goes through the scheduler like any other edit.
func (m Model) reformat(kind history.Kind, done string, run func(string) (string, jsonfmt.Outcome)) (tea.Model, tea.Cmd) {
	started := time.Now()
	text := m.jsonInput.Value()
	out, outcome := run(text)
	took := time.Since(started)

	if outcome.Valid() {
		m.jsonInput.SetValue(out)
		m.scheduler.Edit(out)
		m.applyOutcome(out, outcome)
		if outcome.Wrapped {
			done += " (wrapped in braces)"
		}
		m.setNotice(done, true)
	} else {
		m.applyOutcome(text, outcome)
		m.notice = ""
	}
	return m, m.recordCmd(kind, outcome.Status.String(), outcome.String(), took)
}

// =============================================================================
// DIFF TAB
// =============================================================================

func (m Model) handleDiffKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showingDiff {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.showingDiff = false
			m.focusDiffEditor()
			return m, nil
		case key.Matches(msg, m.keys.HelpAlt):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.Swap):
			m.swapSides()
			return m.compare()
		}
		var cmd tea.Cmd
		m.diffPort, cmd = m.diffPort.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Compare):
		return m.compare()
	case key.Matches(msg, m.keys.Swap):
		m.swapSides()
		return m, nil
	case key.Matches(msg, m.keys.FocusPane):
		m.rightFocus = !m.rightFocus
		m.focusDiffEditor()
		return m, nil
	}

	ta := &m.left
	if m.rightFocus {
		ta = &m.right
	}
	cmd, _ := forward(ta, msg)
	return m, cmd
}

func (m *Model) focusDiffEditor() {
	m.left.Blur()
	m.right.Blur()
	if m.rightFocus {
		m.right.Focus()
	} else {
		m.left.Focus()
	}
}

func (m *Model) swapSides() {
	l, r := m.left.Value(), m.right.Value()
	m.left.SetValue(r)
	m.right.SetValue(l)
}

// compare aligns both editors and switches to the scrollable results view.
func (m Model) compare() (tea.Model, tea.Cmd) {
	started := time.Now()
	result := diff.AlignText(m.left.Value(), m.right.Value())
	took := time.Since(started)

	m.diffView.SetResult(result)
	m.diffPort.SetContent(m.diffView.Render())
	m.diffPort.GotoTop()
	m.showingDiff = true
	m.left.Blur()
	m.right.Blur()

	status := "identical"
	if !result.Identical() {
		status = "modified"
	}
	summary := result.Summary()
	m.setNotice(summary, result.Identical())
	return m, m.recordCmd(history.KindDiff, status, summary, took)
}

// =============================================================================
// TEXT, BASE64 AND TIME TABS
// =============================================================================

func (m Model) handleToolKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextOp):
		m.nextOp()
		return m, nil
	case key.Matches(msg, m.keys.Cycle):
		m.cycle()
		return m, nil
	case key.Matches(msg, m.keys.Run):
		return m.run()
	}

	cmd, _ := forward(m.focusedEditor(), msg)
	return m, cmd
}

func (m *Model) nextOp() {
	switch m.tab {
	case TabText:
		m.textOp = (m.textOp + 1) % len(texttools.Ops())
	case TabBase64:
		m.b64Decode = !m.b64Decode
	case TabTime:
		m.timeMode = timeMode((int(m.timeMode) + 1) % timeModeCount)
	}
	m.notice = ""
}

func (m *Model) cycle() {
	switch m.tab {
	case TabBase64:
		m.b64Variant = (m.b64Variant + 1) % (codec.URIComponent + 1)
	case TabTime:
		if m.timeUnit == timeconv.Seconds {
			m.timeUnit = timeconv.Milliseconds
		} else {
			m.timeUnit = timeconv.Seconds
		}
	}
}

// run applies the active tab's operation. Failures are shown in the status
// line and recorded with status "error".
func (m Model) run() (tea.Model, tea.Cmd) {
	started := time.Now()
	var (
		kind    history.Kind
		out     string
		summary string
		err     error
	)

	switch m.tab {
	case TabText:
		kind = history.KindText
		op := texttools.Ops()[m.textOp].Op
		out, err = texttools.Apply(op, m.textInput.Value())
		summary = string(op)
		if err == nil {
			m.textOutput = out
			c := texttools.Count(out)
			summary += ": " + plural(c.Chars, "character") + ", " + plural(c.Words, "word")
		}

	case TabBase64:
		kind = history.KindBase64
		if m.b64Decode {
			out, err = codec.Decode(m.b64Input.Value(), m.b64Variant)
			summary = "decode " + m.b64Variant.String()
		} else {
			out = codec.Encode(m.b64Input.Value(), m.b64Variant)
			summary = "encode " + m.b64Variant.String()
		}
		if err == nil {
			m.b64Output = out
		}

	case TabTime:
		kind = history.KindTime
		input := m.timeInput.Value()
		switch m.timeMode {
		case timeToDate:
			out, err = timeconv.ToDate(input, m.timeUnit, time.Local)
			summary = "to-date " + m.timeUnit.String()
		case timeToTimestamp:
			var ts int64
			ts, err = timeconv.ToTimestamp(input, m.timeUnit, time.Local)
			out = strconv.FormatInt(ts, 10)
			summary = "to-ts " + m.timeUnit.String()
		case timeNow:
			out = strconv.FormatInt(timeconv.Now(m.timeUnit), 10)
			summary = "now " + m.timeUnit.String()
		}
		if err == nil {
			m.timeOutput = out
		}
	}

	took := time.Since(started)
	if err != nil {
		m.setNotice(err.Error(), false)
		return m, m.recordCmd(kind, "error", summary, took)
	}
	m.setNotice(summary, true)
	return m, m.recordCmd(kind, "ok", summary, took)
}

// output is what ctrl+y copies for the active tab.
func (m Model) output() string {
	switch m.tab {
	case TabJSON:
		return m.jsonInput.Value()
	case TabDiff:
		if r := m.diffView.Result(); r != nil {
			return diff.FormatUnified("left", "right", r, m.cfg.Diff.ContextLines)
		}
		return ""
	case TabText:
		return m.textOutput
	case TabBase64:
		return m.b64Output
	case TabTime:
		return m.timeOutput
	}
	return ""
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
