// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/toolpanel/internal/config"
	"github.com/jeranaias/toolpanel/internal/history"
	"github.com/jeranaias/toolpanel/internal/jsonfmt"
	"github.com/jeranaias/toolpanel/internal/schedule"
	"github.com/jeranaias/toolpanel/internal/ui/styles"
)

type fakeRecorder struct {
	mu      sync.Mutex
	entries []history.Entry
}

func (r *fakeRecorder) Record(_ context.Context, e history.Entry) (history.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *fakeRecorder) kinds() []history.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]history.Kind, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Kind)
	}
	return out
}

type harness struct {
	m       Model
	clock   *schedule.FakeClock
	rec     *fakeRecorder
	copied  []string
	copyErr error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithConfig(t, config.Default())
}

func newHarnessWithConfig(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	h := &harness{
		clock: schedule.NewFakeClock(time.Unix(0, 0)),
		rec:   &fakeRecorder{},
	}
	h.m = New(styles.NewTheme(styles.ModeDark), cfg,
		WithClock(h.clock),
		WithRecorder(h.rec),
		WithClipboard(func(s string) error {
			h.copied = append(h.copied, s)
			return h.copyErr
		}),
	)
	t.Cleanup(h.m.Close)
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// send feeds messages through Update and runs any command returned by the
// last one, the way the runtime would.
func (h *harness) send(msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = h.m.Update(msg)
		h.m = next.(Model)
	}
	return cmd
}

func (h *harness) typeText(text string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func (h *harness) press(k tea.KeyType) tea.Cmd {
	return h.send(tea.KeyMsg{Type: k})
}

// runCmd executes cmd and feeds a non-nil result back in.
func (h *harness) runCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		h.send(msg)
	}
}

// deliver waits for the next scheduler result and feeds it to Update.
func (h *harness) deliver(t *testing.T) {
	t.Helper()
	msg := waitForResult(h.m.results, h.m.done)()
	require.IsType(t, ValidationMsg{}, msg)
	h.send(msg)
}

// =============================================================================
// JSON TAB
// =============================================================================

func TestPanel_EditsAreDebounced(t *testing.T) {
	h := newHarness(t)

	h.typeText(`{"a":`)
	h.clock.Advance(100 * time.Millisecond)
	h.typeText(`1}`)
	assert.Equal(t, schedule.StatePending, h.m.scheduler.State())
	assert.Contains(t, h.m.View(), "validating")

	h.clock.Advance(schedule.DefaultDelay)
	h.deliver(t)

	assert.True(t, h.m.Outcome().Valid())
	assert.Equal(t, int64(1), h.m.scheduler.Stats().Runs)
	assert.Contains(t, h.m.View(), "valid JSON")
	// Debounced runs are not recorded.
	assert.Empty(t, h.rec.kinds())
}

func TestPanel_InvalidOutcomeMarksPreview(t *testing.T) {
	h := newHarness(t)

	h.typeText(`{"a": }`)
	h.clock.Advance(schedule.DefaultDelay)
	h.deliver(t)

	outcome := h.m.Outcome()
	require.Equal(t, jsonfmt.StatusInvalid, outcome.Status)
	assert.Equal(t, 0, h.m.jsonView.ErrorRow())
	assert.Contains(t, h.m.View(), "line 1, column")
}

func TestPanel_ValidateNowBypassesDebounce(t *testing.T) {
	h := newHarness(t)

	h.typeText(`[1, 2`)
	cmd := h.press(tea.KeyCtrlV)

	assert.Equal(t, jsonfmt.StatusInvalid, h.m.Outcome().Status)
	assert.Equal(t, schedule.StatePending, h.m.scheduler.State())
	h.runCmd(cmd)
	assert.Equal(t, []history.Kind{history.KindValidate}, h.rec.kinds())
}

func TestPanel_FormatAndCompress(t *testing.T) {
	h := newHarness(t)

	h.typeText(`{"a":[1,2]}`)
	h.runCmd(h.press(tea.KeyCtrlF))
	assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ]\n}", h.m.jsonInput.Value())
	assert.Equal(t, "formatted", h.m.notice)

	h.runCmd(h.press(tea.KeyCtrlK))
	assert.Equal(t, `{"a":[1,2]}`, h.m.jsonInput.Value())
	assert.Equal(t, "compressed", h.m.notice)

	assert.Equal(t, []history.Kind{history.KindFormat, history.KindCompress}, h.rec.kinds())
	// The reformatted text is scheduled like an edit.
	assert.Equal(t, `{"a":[1,2]}`, h.m.scheduler.Text())
}

func TestPanel_FormatWrapsFragment(t *testing.T) {
	h := newHarness(t)

	h.typeText(`"a": 1`)
	h.press(tea.KeyCtrlF)

	assert.Equal(t, "{\n  \"a\": 1\n}", h.m.jsonInput.Value())
	assert.Contains(t, h.m.notice, "wrapped")
}

func TestPanel_FormatInvalidKeepsBuffer(t *testing.T) {
	h := newHarness(t)

	h.typeText(`{"a": tru}`)
	h.press(tea.KeyCtrlF)

	assert.Equal(t, `{"a": tru}`, h.m.jsonInput.Value())
	assert.Equal(t, jsonfmt.StatusInvalid, h.m.Outcome().Status)
}

func TestPanel_FormattedBufferRevalidatesWithRemoveEscape(t *testing.T) {
	cfg := config.Default()
	cfg.JSON.RemoveEscape = true
	h := newHarnessWithConfig(t, cfg)

	h.typeText(`{"a":"x\\\"y"}`)
	h.press(tea.KeyCtrlF)
	require.True(t, h.m.Outcome().Valid())
	assert.Equal(t, "formatted", h.m.notice)

	h.clock.Advance(schedule.DefaultDelay)
	h.deliver(t)

	assert.True(t, h.m.Outcome().Valid(), h.m.Outcome().String())
}

func TestPanel_UnescapedFailureNotMarked(t *testing.T) {
	cfg := config.Default()
	cfg.JSON.RemoveEscape = true
	h := newHarnessWithConfig(t, cfg)

	h.typeText(`{\"a\": }`)
	h.clock.Advance(schedule.DefaultDelay)
	h.deliver(t)

	outcome := h.m.Outcome()
	require.Equal(t, jsonfmt.StatusInvalid, outcome.Status)
	assert.True(t, outcome.Unescaped)
	assert.Equal(t, -1, h.m.jsonView.ErrorRow())
}

// =============================================================================
// DIFF TAB
// =============================================================================

func TestPanel_CompareAndSwap(t *testing.T) {
	h := newHarness(t)
	h.press(tea.KeyTab)
	require.Equal(t, TabDiff, h.m.Tab())

	h.typeText("same")
	h.press(tea.KeyCtrlO)
	h.typeText("other")

	h.press(tea.KeyCtrlS)
	assert.Equal(t, "other", h.m.left.Value())
	assert.Equal(t, "same", h.m.right.Value())

	h.runCmd(h.press(tea.KeyCtrlD))
	assert.True(t, h.m.showingDiff)
	assert.Equal(t, "Modified +1 -1 (0 unchanged)", h.m.notice)
	assert.Equal(t, []history.Kind{history.KindDiff}, h.rec.kinds())
	assert.Contains(t, h.m.View(), "other")

	// Keys go to the viewport, not the editors, while results are shown.
	h.typeText("x")
	assert.Equal(t, "other", h.m.left.Value())

	h.press(tea.KeyEsc)
	assert.False(t, h.m.showingDiff)
	assert.True(t, h.m.right.Focused())
}

func TestPanel_HelpAltOnlyOutsideEditors(t *testing.T) {
	h := newHarness(t)
	h.press(tea.KeyTab)

	h.typeText("?")
	assert.False(t, h.m.showHelp)
	assert.Equal(t, "?", h.m.left.Value())

	h.press(tea.KeyCtrlD)
	h.typeText("?")
	assert.True(t, h.m.showHelp)
	assert.Contains(t, h.m.View(), "compare")

	h.press(tea.KeyEsc)
	assert.False(t, h.m.showHelp)
}

func TestPanel_CopyDiffAsUnified(t *testing.T) {
	h := newHarness(t)
	h.press(tea.KeyTab)
	h.typeText("a")
	h.press(tea.KeyCtrlO)
	h.typeText("b")
	h.press(tea.KeyCtrlD)

	h.runCmd(h.press(tea.KeyCtrlY))

	require.Len(t, h.copied, 1)
	assert.Contains(t, h.copied[0], "--- left")
	assert.Contains(t, h.copied[0], "-a")
	assert.Contains(t, h.copied[0], "+b")
}

// =============================================================================
// TOOL TABS
// =============================================================================

func TestPanel_TextTool(t *testing.T) {
	h := newHarness(t)
	h.press(tea.KeyTab)
	h.press(tea.KeyTab)
	require.Equal(t, TabText, h.m.Tab())

	h.typeText("  hello  ")
	h.runCmd(h.press(tea.KeyCtrlR))
	assert.Equal(t, "hello", h.m.textOutput)

	h.press(tea.KeyCtrlN)
	h.press(tea.KeyCtrlR)
	assert.Equal(t, "  HELLO  ", h.m.textOutput)
	assert.Equal(t, []history.Kind{history.KindText}, h.rec.kinds())
}

func TestPanel_Base64Tool(t *testing.T) {
	h := newHarness(t)
	h.press(tea.KeyShiftTab)
	h.press(tea.KeyShiftTab)
	require.Equal(t, TabBase64, h.m.Tab())

	h.typeText("hi?")
	h.press(tea.KeyCtrlR)
	assert.Equal(t, "aGk/", h.m.b64Output)

	h.press(tea.KeyCtrlT) // url
	h.press(tea.KeyCtrlR)
	assert.Equal(t, "aGk_", h.m.b64Output)

	h.press(tea.KeyCtrlN) // decode "hi?" fails
	h.press(tea.KeyCtrlR)
	assert.False(t, h.m.noticeOK)
	assert.Equal(t, "aGk_", h.m.b64Output)
}

func TestPanel_TimeTool(t *testing.T) {
	h := newHarness(t)
	h.press(tea.KeyShiftTab)
	require.Equal(t, TabTime, h.m.Tab())

	h.press(tea.KeyCtrlN) // date → timestamp
	h.typeText("1970-01-01T00:00:10Z")
	h.press(tea.KeyCtrlR)
	assert.Equal(t, "10", h.m.timeOutput)

	h.press(tea.KeyCtrlT) // ms
	h.press(tea.KeyCtrlR)
	assert.Equal(t, "10000", h.m.timeOutput)
}

// =============================================================================
// GENERAL
// =============================================================================

func TestPanel_CopyFailureShowsNotice(t *testing.T) {
	h := newHarness(t)
	h.copyErr = errors.New("no clipboard")
	h.typeText(`{}`)

	h.runCmd(h.press(tea.KeyCtrlY))

	assert.Equal(t, []string{`{}`}, h.copied)
	assert.False(t, h.m.noticeOK)
	assert.Contains(t, h.m.notice, "no clipboard")
}

func TestPanel_QuitClosesScheduler(t *testing.T) {
	h := newHarness(t)
	h.typeText(`{}`)

	cmd := h.press(tea.KeyCtrlC)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	h.clock.Advance(time.Second)
	assert.Zero(t, h.m.scheduler.Stats().Runs)
	assert.Nil(t, waitForResult(h.m.results, h.m.done)())

	// Close stays safe after quit.
	h.m.Close()
}

func TestPanel_ViewShowsTabs(t *testing.T) {
	h := newHarness(t)
	view := h.m.View()

	for _, name := range tabNames {
		assert.True(t, strings.Contains(view, name), name)
	}
}

func TestPanel_NarrowLayout(t *testing.T) {
	h := newHarness(t)
	h.send(tea.WindowSizeMsg{Width: 50, Height: 20})

	assert.Equal(t, styles.LayoutNarrow, h.m.theme.GetLayoutMode())
	assert.Equal(t, 50, h.m.jsonPreview.Width)
	assert.NotEmpty(t, h.m.View())
}
