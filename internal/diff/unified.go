// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"fmt"
	"strings"
)

// DefaultContextLines is the number of unchanged lines kept around a change.
const DefaultContextLines = 3

// =============================================================================
// HUNKS
// =============================================================================

// Hunk represents a contiguous section of changes plus context.
type Hunk struct {
	LeftStart  int     // Starting line on the left side
	LeftCount  int     // Number of left lines in the hunk
	RightStart int     // Starting line on the right side
	RightCount int     // Number of right lines in the hunk
	Entries    []Entry // The entries of this hunk
}

// Header returns the "@@ -l,c +r,c @@" line for the hunk.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.LeftStart, h.LeftCount, h.RightStart, h.RightCount)
}

// Hunks groups changed entries with up to context unchanged entries before
// and after each change. Groups whose context would touch are merged.
func (r *Result) Hunks(context int) []Hunk {
	if r == nil || len(r.Entries) == 0 {
		return nil
	}
	if context < 0 {
		context = 0
	}

	// Collect [start, end) windows around every change, merging overlaps.
	type window struct{ start, end int }
	var windows []window
	for i, e := range r.Entries {
		if e.Origin == OriginEqual {
			continue
		}
		start := max(0, i-context)
		end := min(len(r.Entries), i+context+1)
		if n := len(windows); n > 0 && start <= windows[n-1].end {
			windows[n-1].end = max(windows[n-1].end, end)
			continue
		}
		windows = append(windows, window{start, end})
	}

	hunks := make([]Hunk, 0, len(windows))
	leftSeen, rightSeen, cursor := 0, 0, 0
	for _, w := range windows {
		// Count lines consumed before the window so empty sides get the
		// conventional "line before" start.
		for ; cursor < w.start; cursor++ {
			if r.Entries[cursor].LeftLine > 0 {
				leftSeen++
			}
			if r.Entries[cursor].RightLine > 0 {
				rightSeen++
			}
		}

		h := Hunk{Entries: r.Entries[w.start:w.end]}
		for _, e := range h.Entries {
			if e.LeftLine > 0 {
				h.LeftCount++
			}
			if e.RightLine > 0 {
				h.RightCount++
			}
		}
		h.LeftStart = leftSeen
		if h.LeftCount > 0 {
			h.LeftStart++
		}
		h.RightStart = rightSeen
		if h.RightCount > 0 {
			h.RightStart++
		}
		hunks = append(hunks, h)
	}
	return hunks
}

// =============================================================================
// UNIFIED FORMAT
// =============================================================================

// FormatUnified returns the result in unified diff format. An identical
// result produces only the two header lines.
func FormatUnified(leftName, rightName string, r *Result, context int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("--- %s\n", leftName))
	sb.WriteString(fmt.Sprintf("+++ %s\n", rightName))

	for _, hunk := range r.Hunks(context) {
		sb.WriteString(hunk.Header())
		sb.WriteString("\n")
		for _, e := range hunk.Entries {
			sb.WriteString(e.Origin.Prefix())
			sb.WriteString(e.Content)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
