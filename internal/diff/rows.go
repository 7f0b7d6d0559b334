// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	diffmatchpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// =============================================================================
// TWO-PANE ROWS
// =============================================================================

// Row is one visual row of a side-by-side view. A nil side renders blank.
type Row struct {
	Left  *Entry
	Right *Entry
}

// Changed reports whether the row holds a delete/insert pair.
func (r Row) Changed() bool {
	return r.Left != nil && r.Right != nil && r.Left.Origin != OriginEqual
}

// Rows pairs entries for a two-pane view. An equal entry fills both sides; a
// delete immediately followed by an insert shares one row; any other delete
// or insert leaves the opposite side blank.
func (r *Result) Rows() []Row {
	if r == nil {
		return nil
	}
	rows := make([]Row, 0, len(r.Entries))
	for i := 0; i < len(r.Entries); i++ {
		e := &r.Entries[i]
		switch e.Origin {
		case OriginEqual:
			rows = append(rows, Row{Left: e, Right: e})
		case OriginDelete:
			if i+1 < len(r.Entries) && r.Entries[i+1].Origin == OriginInsert {
				rows = append(rows, Row{Left: e, Right: &r.Entries[i+1]})
				i++
				continue
			}
			rows = append(rows, Row{Left: e})
		case OriginInsert:
			rows = append(rows, Row{Right: e})
		}
	}
	return rows
}

// =============================================================================
// INLINE CHANGES
// =============================================================================

// Span is a run of characters within one side of a changed row.
type Span struct {
	Text    string `json:"text"`
	Changed bool   `json:"changed"`
}

// InlineChanges computes character-level spans for a changed row pair. The
// left spans carry the deleted runs and the right spans the inserted runs.
func InlineChanges(left, right string) (leftSpans, rightSpans []Span) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(left, right, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			leftSpans = appendSpan(leftSpans, d.Text, false)
			rightSpans = appendSpan(rightSpans, d.Text, false)
		case diffmatchpatch.DiffDelete:
			leftSpans = appendSpan(leftSpans, d.Text, true)
		case diffmatchpatch.DiffInsert:
			rightSpans = appendSpan(rightSpans, d.Text, true)
		}
	}
	return leftSpans, rightSpans
}

// appendSpan merges adjacent spans with the same change flag.
func appendSpan(spans []Span, text string, changed bool) []Span {
	if text == "" {
		return spans
	}
	if n := len(spans); n > 0 && spans[n-1].Changed == changed {
		spans[n-1].Text += text
		return spans
	}
	return append(spans, Span{Text: text, Changed: changed})
}
