// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package texttools implements the named text transforms and counters used
// by the text tab, the `toolpanel text` command and POST /v1/text.
package texttools

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ErrUnknownOp is returned by Apply for an unrecognized operation name.
var ErrUnknownOp = errors.New("unknown text operation")

// Op names a text transform.
type Op string

const (
	OpTrim             Op = "trim"
	OpUpper            Op = "upper"
	OpLower            Op = "lower"
	OpCapitalize       Op = "capitalize"
	OpReverse          Op = "reverse"
	OpRemoveSpaces     Op = "remove-spaces"
	OpRemoveEmptyLines Op = "remove-empty-lines"
	OpCollapseSpaces   Op = "collapse-spaces"
	OpSortLines        Op = "sort-lines"
	OpCompressLines    Op = "compress-lines"
	OpSplitSentences   Op = "split-sentences"
	OpNumberLines      Op = "number-lines"
	OpNormalize        Op = "normalize"
)

var (
	lineBreak     = regexp.MustCompile(`\r\n|\r|\n`)
	whitespace    = regexp.MustCompile(`\s+`)
	wordStart     = regexp.MustCompile(`\b\w`)
	sentenceBreak = regexp.MustCompile(`([.!?。！？])[ \t]*`)

	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

type operation struct {
	op          Op
	description string
	apply       func(string) string
}

var operations = []operation{
	{OpTrim, "Remove leading and trailing whitespace", strings.TrimSpace},
	{OpUpper, "Convert to upper case", upper.String},
	{OpLower, "Convert to lower case", lower.String},
	{OpCapitalize, "Capitalize the first letter of every word", capitalize},
	{OpReverse, "Reverse the text character by character", reverse},
	{OpRemoveSpaces, "Remove all whitespace", func(s string) string {
		return whitespace.ReplaceAllString(s, "")
	}},
	{OpRemoveEmptyLines, "Drop blank lines", removeEmptyLines},
	{OpCollapseSpaces, "Collapse whitespace runs into one space", func(s string) string {
		return whitespace.ReplaceAllString(s, " ")
	}},
	{OpSortLines, "Sort lines", sortLines},
	{OpCompressLines, "Join non-blank lines with single spaces", compressLines},
	{OpSplitSentences, "Put each sentence on its own line", splitSentences},
	{OpNumberLines, "Prefix each line with its number", numberLines},
	{OpNormalize, "Apply Unicode NFC normalization", norm.NFC.String},
}

// Info describes one operation.
type Info struct {
	Op          Op     `json:"op"`
	Description string `json:"description"`
}

// Ops lists the supported operations in display order.
func Ops() []Info {
	out := make([]Info, len(operations))
	for i, o := range operations {
		out[i] = Info{Op: o.op, Description: o.description}
	}
	return out
}

// Apply runs the named operation over text.
func Apply(op Op, text string) (string, error) {
	for _, o := range operations {
		if o.op == op {
			return o.apply(text), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOp, op)
}

// Lines splits text on any line terminator.
func Lines(text string) []string {
	return lineBreak.Split(text, -1)
}

func capitalize(text string) string {
	return wordStart.ReplaceAllStringFunc(text, upper.String)
}

func reverse(text string) string {
	runes := []rune(text)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func removeEmptyLines(text string) string {
	var kept []string
	for _, line := range Lines(text) {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func sortLines(text string) string {
	lines := Lines(text)
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func compressLines(text string) string {
	var parts []string
	for _, line := range Lines(text) {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

func splitSentences(text string) string {
	out := sentenceBreak.ReplaceAllString(text, "$1\n")
	return strings.TrimRight(out, "\n")
}

func numberLines(text string) string {
	lines := Lines(text)
	for i, line := range lines {
		lines[i] = fmt.Sprintf("%03d. %s", i+1, line)
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// COUNTS
// =============================================================================

// Counts summarizes a text.
type Counts struct {
	Chars        int `json:"chars"`
	CharsNoSpace int `json:"chars_no_space"`
	Words        int `json:"words"`
	// Lines counts non-empty lines only
	Lines int `json:"lines"`
}

// Count computes character, word and line counts. Characters are runes.
func Count(text string) Counts {
	c := Counts{Chars: utf8.RuneCountInString(text)}
	for _, r := range text {
		if !unicode.IsSpace(r) {
			c.CharsNoSpace++
		}
	}
	c.Words = len(strings.Fields(text))
	for _, line := range Lines(text) {
		if line != "" {
			c.Lines++
		}
	}
	return c
}

// String renders counts one per line.
func (c Counts) String() string {
	return fmt.Sprintf("Characters: %d\nCharacters (no spaces): %d\nWords: %d\nLines: %d",
		c.Chars, c.CharsNoSpace, c.Words, c.Lines)
}
