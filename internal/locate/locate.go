// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package locate converts a parser's character offset into a line and column.
//
// Offsets are 0-based character (rune) indexes. Every line break, whatever
// its byte width, counts as exactly one character between lines. Locations
// are 1-based.
package locate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Location is a resolved position inside a text body.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String returns "line:column".
func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

func splitLines(body string) []string {
	return lineBreak.Split(body, -1)
}

// Locate maps offset onto body. An offset past the end clamps to one column
// after the last character of the last line.
func Locate(body string, offset int) Location {
	if offset < 0 {
		offset = 0
	}

	lines := splitLines(body)
	consumed := 0
	for k, line := range lines {
		n := utf8.RuneCountInString(line)
		if offset <= consumed+n {
			return Location{Line: k + 1, Column: offset - consumed + 1}
		}
		consumed += n + 1
	}

	last := lines[len(lines)-1]
	return Location{Line: len(lines), Column: utf8.RuneCountInString(last) + 1}
}

// RepairColumn pins a column that spills past the end of its line back to the
// end of that line. Parsers report a missing comma at the start of the next
// token; the pin only applies when the line is non-empty and does not
// already end in an opener or separator.
func RepairColumn(body string, loc Location) Location {
	lines := splitLines(body)
	if loc.Line < 1 || loc.Line > len(lines) {
		return loc
	}

	line := lines[loc.Line-1]
	n := utf8.RuneCountInString(line)
	if loc.Column <= n {
		return loc
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasSuffix(trimmed, ",") ||
		strings.HasSuffix(trimmed, "{") || strings.HasSuffix(trimmed, "[") {
		return loc
	}

	loc.Column = n + 1
	return loc
}

// LocateWithHeuristic locates offset and applies RepairColumn.
func LocateWithHeuristic(body string, offset int) Location {
	return RepairColumn(body, Locate(body, offset))
}

// =============================================================================
// MESSAGE OFFSETS
// =============================================================================

var positionPattern = regexp.MustCompile(`position (\d+)`)

// ExtractOffset finds the "position N" offset embedded in a parser message.
// It reports false when the message carries no recoverable offset.
func ExtractOffset(message string) (int, bool) {
	m := positionPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// =============================================================================
// AUTO-WRAP
// =============================================================================

// AutoWrap wraps a fragment such as `"key": "value"` into a document. A
// missing opener becomes "{"; a missing closer matches whichever opener the
// text now starts with. The text is trimmed only when it changes.
//
// Locations computed against the wrapped text do not map back onto the
// caller's original input.
func AutoWrap(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	wrapped := trimmed
	changed := false

	if !strings.HasPrefix(wrapped, "{") && !strings.HasPrefix(wrapped, "[") {
		wrapped = "{" + wrapped
		changed = true
	}
	if !strings.HasSuffix(wrapped, "}") && !strings.HasSuffix(wrapped, "]") {
		if strings.HasPrefix(wrapped, "[") {
			wrapped += "]"
		} else {
			wrapped += "}"
		}
		changed = true
	}

	if !changed {
		return text, false
	}
	return wrapped, true
}
