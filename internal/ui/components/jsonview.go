// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/toolpanel/internal/diff"
	"github.com/jeranaias/toolpanel/internal/jsonfmt"
	"github.com/jeranaias/toolpanel/internal/ui/styles"
	"github.com/jeranaias/toolpanel/internal/util"
)

// =============================================================================
// JSON VIEW
// =============================================================================

// JSONView renders a JSON buffer with a line-number gutter. When the outcome
// is invalid and carries a location, the offending line is marked in the
// gutter and a caret row points at the column.
type JSONView struct {
	theme     *styles.Theme
	text      string
	outcome   jsonfmt.Outcome
	highlight bool
	errorRow  int
}

// NewJSONView creates a view with syntax highlighting enabled.
func NewJSONView(theme *styles.Theme) *JSONView {
	return &JSONView{theme: theme, highlight: true, errorRow: -1}
}

// SetHighlight toggles chroma highlighting.
func (v *JSONView) SetHighlight(on bool) {
	v.highlight = on
}

// SetContent sets the buffer and the outcome to annotate it with.
func (v *JSONView) SetContent(text string, outcome jsonfmt.Outcome) {
	v.text = text
	v.outcome = outcome
}

// ErrorRow returns the rendered row of the marked line after the last Render,
// or -1 when nothing is marked.
func (v *JSONView) ErrorRow() int {
	return v.errorRow
}

// errorLine is the 1-based line to mark, or 0. A location that refers to a
// wrapped or unescaped body does not match the displayed text and is not
// marked.
func (v *JSONView) errorLine() (line, column int) {
	o := v.outcome
	if o.Status != jsonfmt.StatusInvalid || !o.LocatesInput() {
		return 0, 0
	}
	return o.Location.Line, o.Location.Column
}

// Render returns the annotated buffer.
func (v *JSONView) Render() string {
	v.errorRow = -1
	if jsonfmt.IsBlank(v.text) {
		return v.theme.Muted.Render("Type or paste JSON to validate")
	}

	raw := diff.SplitLines(v.text)
	shown := raw
	if v.highlight {
		if h := Highlight(v.text, "json"); h != v.text {
			if hl := strings.Split(h, "\n"); len(hl) >= len(raw) {
				shown = hl[:len(raw)]
			}
		}
	}

	errLine, errCol := v.errorLine()
	digits := len(fmt.Sprint(len(raw)))
	if digits < 3 {
		digits = 3
	}
	number := v.theme.LineNumber.Width(digits)
	numberErr := v.theme.LineNumberError.Width(digits)

	var b strings.Builder
	row := 0
	for i, line := range shown {
		n := i + 1
		if n == errLine {
			v.errorRow = row
			b.WriteString(numberErr.Render(fmt.Sprint(n)))
			b.WriteString(v.theme.Caret.Render(">"))
		} else {
			b.WriteString(number.Render(fmt.Sprint(n)))
			b.WriteString(" ")
		}
		b.WriteString(line)
		b.WriteString("\n")
		row++

		if n == errLine {
			// gutter digits + margin + marker column
			pad := digits + 2 + caretOffset(raw[i], errCol)
			b.WriteString(strings.Repeat(" ", pad))
			b.WriteString(v.theme.Caret.Render("^ " + v.outcome.Message))
			b.WriteString("\n")
			row++
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// caretOffset is the display width of line before the 1-based rune column.
func caretOffset(line string, column int) int {
	runes := []rune(line)
	if column-1 < len(runes) {
		runes = runes[:max(column-1, 0)]
	}
	return runewidth.StringWidth(util.ExpandTabs(string(runes), tabWidth))
}

// StatusLine renders the outcome for the status bar.
func (v *JSONView) StatusLine() string {
	switch v.outcome.Status {
	case jsonfmt.StatusValid:
		return v.theme.StatusValid.Render(styles.StatusIndicators.Success + " " + v.outcome.String())
	case jsonfmt.StatusInvalid:
		return v.theme.StatusInvalid.Render(styles.StatusIndicators.Error + " " + v.outcome.String())
	default:
		return v.theme.StatusEmpty.Render(styles.StatusIndicators.Empty + " " + v.outcome.String())
	}
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// Highlight returns code colored for a 256-color terminal, or code unchanged
// when the language is unknown or formatting fails.
func Highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		return code
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
