// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/toolpanel/internal/diff"
	"github.com/jeranaias/toolpanel/internal/jsonfmt"
	"github.com/jeranaias/toolpanel/internal/ui/styles"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func testTheme() *styles.Theme {
	return styles.NewTheme(styles.ModeDark)
}

// =============================================================================
// DIFF VIEW
// =============================================================================

func TestDiffView_Empty(t *testing.T) {
	v := NewDiffView(testTheme())
	if !strings.Contains(plain(v.Render()), "Nothing compared yet") {
		t.Errorf("unexpected empty render: %q", v.Render())
	}
}

func TestDiffView_RowsAreAligned(t *testing.T) {
	v := NewDiffView(testTheme())
	v.SetWidth(60)
	v.SetResult(diff.AlignText("a\nb\nc", "a\nB\nc\nd"))

	lines := strings.Split(plain(v.Render()), "\n")
	if len(lines) != 1+4 {
		t.Fatalf("expected header plus 4 rows, got %d: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "Modified +2 -1") {
		t.Errorf("header = %q", lines[0])
	}

	width := runewidth.StringWidth(lines[1])
	for i, line := range lines[1:] {
		if got := runewidth.StringWidth(line); got != width {
			t.Errorf("row %d width %d, want %d: %q", i, got, width, line)
		}
	}

	// b/B share a row; d has a blank left side.
	if !strings.Contains(lines[2], "b") || !strings.Contains(lines[2], "B") {
		t.Errorf("changed row = %q", lines[2])
	}
	left := strings.SplitN(lines[4], "│", 2)[0]
	if strings.TrimSpace(left) != "" {
		t.Errorf("inserted row should have blank left pane, got %q", left)
	}
}

func TestDiffView_IdenticalHeader(t *testing.T) {
	v := NewDiffView(testTheme())
	v.SetResult(diff.AlignText("x\ny", "x\ny"))

	header := strings.Split(plain(v.Render()), "\n")[0]
	if header != "Identical (2 lines)" {
		t.Errorf("header = %q", header)
	}
}

func TestDiffView_TruncatesLongLines(t *testing.T) {
	v := NewDiffView(testTheme())
	v.SetWidth(40)
	v.SetLineNumbers(false)
	long := strings.Repeat("x", 200)
	v.SetResult(diff.AlignText(long, long+"y"))

	for _, line := range strings.Split(plain(v.Render()), "\n")[1:] {
		if w := runewidth.StringWidth(line); w > 40 {
			t.Errorf("row exceeds width: %d", w)
		}
	}
}

func TestDiffView_InlineOff(t *testing.T) {
	v := NewDiffView(testTheme())
	v.SetInline(false)
	v.SetResult(diff.AlignText("hello world", "hello there"))

	out := plain(v.Render())
	if !strings.Contains(out, "hello world") || !strings.Contains(out, "hello there") {
		t.Errorf("render = %q", out)
	}
}

// =============================================================================
// JSON VIEW
// =============================================================================

func TestJSONView_MarksErrorLine(t *testing.T) {
	text := "{\n  \"a\": 1,\n  \"b\": }\n}"
	outcome := jsonfmt.NewValidator(nil, jsonfmt.Options{}).Validate(text)
	if outcome.Location == nil {
		t.Fatalf("expected a location, got %+v", outcome)
	}

	v := NewJSONView(testTheme())
	v.SetHighlight(false)
	v.SetContent(text, outcome)
	lines := strings.Split(plain(v.Render()), "\n")

	row := v.ErrorRow()
	if row != outcome.Location.Line-1 {
		t.Fatalf("error row = %d, want %d", row, outcome.Location.Line-1)
	}
	if !strings.Contains(lines[row], ">") {
		t.Errorf("error line lacks marker: %q", lines[row])
	}

	caret := lines[row+1]
	idx := strings.Index(caret, "^")
	if idx < 0 {
		t.Fatalf("caret row missing: %q", caret)
	}
	// 3-digit gutter, margin, marker, then column-1 cells
	if want := 3 + 2 + outcome.Location.Column - 1; idx != want {
		t.Errorf("caret at %d, want %d", idx, want)
	}
	if len(lines) != 5 {
		t.Errorf("expected 4 lines plus caret row, got %d", len(lines))
	}
}

func TestJSONView_ValidHasNoMarker(t *testing.T) {
	text := `{"ok": true}`
	v := NewJSONView(testTheme())
	v.SetHighlight(false)
	v.SetContent(text, jsonfmt.NewValidator(nil, jsonfmt.Options{}).Validate(text))

	out := plain(v.Render())
	if v.ErrorRow() != -1 {
		t.Errorf("error row = %d", v.ErrorRow())
	}
	if !strings.Contains(out, `{"ok": true}`) {
		t.Errorf("render = %q", out)
	}
	if !strings.Contains(plain(v.StatusLine()), "valid JSON") {
		t.Errorf("status = %q", v.StatusLine())
	}
}

func TestJSONView_WrappedLocationNotMarked(t *testing.T) {
	v := NewJSONView(testTheme())
	v.SetHighlight(false)
	v.SetContent(`"a": }`, jsonfmt.Outcome{
		Status:  jsonfmt.StatusInvalid,
		Message: "bad",
		Wrapped: true,
	})
	v.Render()
	if v.ErrorRow() != -1 {
		t.Errorf("wrapped outcome should not mark a row")
	}
}

func TestJSONView_Blank(t *testing.T) {
	v := NewJSONView(testTheme())
	v.SetContent("  \n", jsonfmt.Outcome{})
	if !strings.Contains(plain(v.Render()), "Type or paste JSON") {
		t.Errorf("render = %q", v.Render())
	}
}

func TestHighlight(t *testing.T) {
	out := Highlight(`{"a": 1}`, "json")
	if plain(out) != `{"a": 1}` {
		t.Errorf("highlighting changed the text: %q", plain(out))
	}
	if Highlight("x", "no-such-language") != "x" {
		t.Error("unknown language should pass through")
	}
}

func TestCaretOffset(t *testing.T) {
	tests := []struct {
		line   string
		column int
		want   int
	}{
		{"abc", 1, 0},
		{"abc", 3, 2},
		{"abc", 10, 3},
		{"\tx", 2, 4},
		{"日本x", 3, 4},
	}
	for _, tt := range tests {
		if got := caretOffset(tt.line, tt.column); got != tt.want {
			t.Errorf("caretOffset(%q, %d) = %d, want %d", tt.line, tt.column, got, tt.want)
		}
	}
}

// =============================================================================
// HELP VIEW
// =============================================================================

func TestHelpView_Markdown(t *testing.T) {
	disabled := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hidden"))
	disabled.SetEnabled(false)

	h := NewHelpView(testTheme(), HelpSection{
		Title: "JSON",
		Bindings: []key.Binding{
			key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "format")),
			disabled,
		},
	})

	md := h.Markdown()
	if !strings.Contains(md, "## JSON") || !strings.Contains(md, "| `ctrl+f` | format |") {
		t.Errorf("markdown = %q", md)
	}
	if strings.Contains(md, "hidden") {
		t.Error("disabled binding should be skipped")
	}

	if out := plain(h.Render(60)); !strings.Contains(out, "format") {
		t.Errorf("rendered help = %q", out)
	}
}
