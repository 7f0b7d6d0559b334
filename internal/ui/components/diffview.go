// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/toolpanel/internal/diff"
	"github.com/jeranaias/toolpanel/internal/ui/styles"
	"github.com/jeranaias/toolpanel/internal/util"
)

// =============================================================================
// DIFF VIEW
// =============================================================================

const (
	tabWidth     = 4
	gutterWidth  = 5 // "1234 "
	separator    = " │ "
	minCellWidth = 8
	defaultWidth = 80
)

// DiffView renders a comparison result as two aligned panes.
type DiffView struct {
	theme       *styles.Theme
	result      *diff.Result
	rows        []diff.Row
	width       int
	lineNumbers bool
	inline      bool
}

// NewDiffView creates a diff view with line numbers and inline highlights on.
func NewDiffView(theme *styles.Theme) *DiffView {
	return &DiffView{
		theme:       theme,
		width:       defaultWidth,
		lineNumbers: true,
		inline:      true,
	}
}

// SetResult replaces the displayed result. A nil result clears the view.
func (v *DiffView) SetResult(r *diff.Result) {
	v.result = r
	v.rows = r.Rows()
}

// Result returns the displayed result.
func (v *DiffView) Result() *diff.Result {
	return v.result
}

// SetWidth sets the total render width.
func (v *DiffView) SetWidth(width int) {
	v.width = width
}

// SetLineNumbers toggles the line-number gutters.
func (v *DiffView) SetLineNumbers(on bool) {
	v.lineNumbers = on
}

// SetInline toggles character-level highlighting of changed rows.
func (v *DiffView) SetInline(on bool) {
	v.inline = on
}

// cellWidth is the content width of one pane, excluding its gutter.
func (v *DiffView) cellWidth() int {
	w := v.width - runewidth.StringWidth(separator)
	if v.lineNumbers {
		w -= 2 * gutterWidth
	}
	w /= 2
	if w < minCellWidth {
		w = minCellWidth
	}
	return w
}

// Render returns the header line followed by one line per row.
func (v *DiffView) Render() string {
	if v.result == nil {
		return v.theme.Muted.Render("Nothing compared yet")
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n")

	cell := v.cellWidth()
	for _, row := range v.rows {
		left, right := v.renderCells(row, cell)
		b.WriteString(v.gutter(row.Left, true))
		b.WriteString(left)
		b.WriteString(v.theme.DiffSeparator.Render(separator))
		b.WriteString(v.gutter(row.Right, false))
		b.WriteString(right)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (v *DiffView) renderHeader() string {
	stats := diff.Tally(v.result)
	summary := v.result.Summary()
	if stats.Changed() == 0 {
		return v.theme.StatusValid.Render(summary)
	}

	parts := []string{v.theme.Label.Render("Modified")}
	if stats.Inserted > 0 {
		parts = append(parts, v.theme.DiffInsert.Render(fmt.Sprintf("+%d", stats.Inserted)))
	}
	if stats.Deleted > 0 {
		parts = append(parts, v.theme.DiffDelete.Render(fmt.Sprintf("-%d", stats.Deleted)))
	}
	parts = append(parts, v.theme.Muted.Render(fmt.Sprintf("(%d unchanged)", stats.Equal)))
	return strings.Join(parts, " ")
}

func (v *DiffView) gutter(e *diff.Entry, left bool) string {
	if !v.lineNumbers {
		return ""
	}
	n := 0
	if e != nil {
		if left {
			n = e.LeftLine
		} else {
			n = e.RightLine
		}
	}
	if n == 0 {
		return strings.Repeat(" ", gutterWidth)
	}
	return v.theme.Muted.Render(fmt.Sprintf("%4d ", n))
}

func (v *DiffView) renderCells(row diff.Row, width int) (string, string) {
	if row.Changed() && v.inline {
		ls, rs := diff.InlineChanges(row.Left.Content, row.Right.Content)
		return v.renderSpans(ls, width, v.theme.DiffDelete, v.theme.DiffDeleteSpan),
			v.renderSpans(rs, width, v.theme.DiffInsert, v.theme.DiffInsertSpan)
	}
	return v.renderCell(row.Left, width), v.renderCell(row.Right, width)
}

func (v *DiffView) renderCell(e *diff.Entry, width int) string {
	if e == nil {
		return v.theme.DiffFiller.Render(strings.Repeat(" ", width))
	}
	text := util.FitWidth(util.ExpandTabs(e.Content, tabWidth), width)
	return v.styleFor(e.Origin).Render(text)
}

func (v *DiffView) styleFor(o diff.Origin) lipgloss.Style {
	switch o {
	case diff.OriginDelete:
		return v.theme.DiffDelete
	case diff.OriginInsert:
		return v.theme.DiffInsert
	default:
		return v.theme.DiffEqual
	}
}

// renderSpans styles each span and fits the joined text to width cells.
func (v *DiffView) renderSpans(spans []diff.Span, width int, base, changed lipgloss.Style) string {
	var b strings.Builder
	used := 0
	for _, span := range spans {
		if used >= width {
			break
		}
		text := util.ExpandTabs(span.Text, tabWidth)
		if w := runewidth.StringWidth(text); used+w > width {
			text = util.TruncateWidth(text, width-used)
		}
		used += runewidth.StringWidth(text)

		style := base
		if span.Changed {
			style = changed
		}
		b.WriteString(style.Render(text))
	}
	if used < width {
		b.WriteString(base.Render(strings.Repeat(" ", width-used)))
	}
	return b.String()
}
