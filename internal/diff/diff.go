// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// ORIGIN
// =============================================================================

// Origin records which side(s) of the comparison a line belongs to.
type Origin int

const (
	// OriginEqual is a line present, unchanged, on both sides
	OriginEqual Origin = iota
	// OriginDelete is a line present only on the left side
	OriginDelete
	// OriginInsert is a line present only on the right side
	OriginInsert
)

// String returns the string representation of an origin.
func (o Origin) String() string {
	switch o {
	case OriginEqual:
		return "equal"
	case OriginDelete:
		return "delete"
	case OriginInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// Prefix returns the unified diff prefix character for this origin.
func (o Origin) Prefix() string {
	switch o {
	case OriginDelete:
		return "-"
	case OriginInsert:
		return "+"
	default:
		return " "
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Origin) UnmarshalText(text []byte) error {
	switch string(text) {
	case "equal":
		*o = OriginEqual
	case "delete":
		*o = OriginDelete
	case "insert":
		*o = OriginInsert
	default:
		return fmt.Errorf("unknown diff origin %q", text)
	}
	return nil
}

// =============================================================================
// ENTRY & RESULT
// =============================================================================

// Entry is one row of alignment output.
type Entry struct {
	Content   string `json:"content"`
	Origin    Origin `json:"origin"`
	LeftLine  int    `json:"left_line,omitempty"`  // 1-based line on the left side (0 if inserted)
	RightLine int    `json:"right_line,omitempty"` // 1-based line on the right side (0 if deleted)
}

// Result is the ordered alignment of one comparison run.
type Result struct {
	Entries []Entry `json:"entries"`
}

// Len returns the number of entries.
func (r *Result) Len() int {
	return len(r.Entries)
}

// Identical reports whether every entry is common to both sides.
func (r *Result) Identical() bool {
	for _, e := range r.Entries {
		if e.Origin != OriginEqual {
			return false
		}
	}
	return true
}

// =============================================================================
// LINE SPLITTING
// =============================================================================

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// SplitLines splits text on any line break. Splitting is total: the empty
// string yields a single empty line and a trailing break yields a trailing
// empty line.
func SplitLines(text string) []string {
	return lineBreak.Split(text, -1)
}

// =============================================================================
// ALIGNMENT
// =============================================================================

// Align walks both sides in lockstep. Equal lines at the same index become a
// single OriginEqual entry; differing lines become an OriginDelete entry
// followed by an OriginInsert entry. Once one side runs out the remainder of
// the other is emitted as deletes or inserts.
func Align(left, right []string) *Result {
	n := max(len(left), len(right))
	entries := make([]Entry, 0, n)

	i, j := 0, 0
	ln1, ln2 := 1, 1
	for i < len(left) || j < len(right) {
		switch {
		case i >= len(left):
			entries = append(entries, Entry{Content: right[j], Origin: OriginInsert, RightLine: ln2})
			j++
			ln2++
		case j >= len(right):
			entries = append(entries, Entry{Content: left[i], Origin: OriginDelete, LeftLine: ln1})
			i++
			ln1++
		case left[i] == right[j]:
			entries = append(entries, Entry{Content: left[i], Origin: OriginEqual, LeftLine: ln1, RightLine: ln2})
			i++
			j++
			ln1++
			ln2++
		default:
			entries = append(entries,
				Entry{Content: left[i], Origin: OriginDelete, LeftLine: ln1},
				Entry{Content: right[j], Origin: OriginInsert, RightLine: ln2},
			)
			i++
			j++
			ln1++
			ln2++
		}
	}

	return &Result{Entries: entries}
}

// AlignText splits both texts into lines and aligns them.
func AlignText(leftText, rightText string) *Result {
	return Align(SplitLines(leftText), SplitLines(rightText))
}

// =============================================================================
// STATS
// =============================================================================

// Stats holds per-origin counts for a Result.
type Stats struct {
	Equal    int `json:"equal"`
	Deleted  int `json:"deleted"`
	Inserted int `json:"inserted"`
}

// Changed returns the number of entries that are not common to both sides.
func (s Stats) Changed() int {
	return s.Deleted + s.Inserted
}

// Tally counts the entries of a result by origin.
func Tally(r *Result) Stats {
	var s Stats
	if r == nil {
		return s
	}
	for _, e := range r.Entries {
		switch e.Origin {
		case OriginEqual:
			s.Equal++
		case OriginDelete:
			s.Deleted++
		case OriginInsert:
			s.Inserted++
		}
	}
	return s
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := Tally(r)
	if s.Changed() == 0 {
		return fmt.Sprintf("Identical (%d lines)", s.Equal)
	}

	parts := []string{"Modified"}
	if s.Inserted > 0 {
		parts = append(parts, fmt.Sprintf("+%d", s.Inserted))
	}
	if s.Deleted > 0 {
		parts = append(parts, fmt.Sprintf("-%d", s.Deleted))
	}
	parts = append(parts, fmt.Sprintf("(%d unchanged)", s.Equal))
	return strings.Join(parts, " ")
}
