// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package jsonfmt

import (
	"fmt"
	"strings"

	"github.com/jeranaias/toolpanel/internal/locate"
)

// =============================================================================
// OUTCOME
// =============================================================================

// Status is the result class of one validation attempt.
type Status int

const (
	// StatusEmpty means the input was blank and the parser was not invoked
	StatusEmpty Status = iota
	// StatusValid means the parser accepted the input
	StatusValid
	// StatusInvalid means the parser rejected the input
	StatusInvalid
)

// String returns the string representation of a status.
func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty":
		*s = StatusEmpty
	case "valid":
		*s = StatusValid
	case "invalid":
		*s = StatusInvalid
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// Outcome is the result of one validation attempt. Message and Location are
// only set for StatusInvalid; Location is nil when the parser message
// carried no offset. Wrapped reports that the input was auto-wrapped before
// parsing and Unescaped that one level of escaping was removed; either way
// Location refers to the preprocessed body, not the caller's input.
type Outcome struct {
	Status    Status           `json:"status"`
	Message   string           `json:"message,omitempty"`
	Location  *locate.Location `json:"location,omitempty"`
	Wrapped   bool             `json:"wrapped,omitempty"`
	Unescaped bool             `json:"unescaped,omitempty"`
}

// Valid reports whether the outcome is StatusValid.
func (o Outcome) Valid() bool {
	return o.Status == StatusValid
}

// LocatesInput reports whether Location can be drawn against the text the
// caller passed in.
func (o Outcome) LocatesInput() bool {
	return o.Location != nil && !o.Wrapped && !o.Unescaped
}

// String renders the outcome for display.
func (o Outcome) String() string {
	switch o.Status {
	case StatusEmpty:
		return "empty input"
	case StatusValid:
		return "valid JSON"
	}
	if o.Location != nil {
		return fmt.Sprintf("line %d, column %d: %s", o.Location.Line, o.Location.Column, o.Message)
	}
	return o.Message
}

// =============================================================================
// OPTIONS
// =============================================================================

// DefaultIndent is the indent used by Format when none is configured.
const DefaultIndent = "  "

// Options control preprocessing and output.
type Options struct {
	// Indent is the per-level indent for Format. Empty means DefaultIndent.
	Indent string

	// AutoWrap wraps fragments in braces before parsing (Format/Compress only).
	AutoWrap bool

	// RemoveEscape strips one level of \" and \\ escaping before parsing.
	RemoveEscape bool
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator validates and re-serializes JSON through a Parser.
type Validator struct {
	parser Parser
	opts   Options
}

// NewValidator creates a validator. A nil parser uses StdParser.
func NewValidator(parser Parser, opts Options) *Validator {
	if parser == nil {
		parser = StdParser{}
	}
	if opts.Indent == "" {
		opts.Indent = DefaultIndent
	}
	return &Validator{parser: parser, opts: opts}
}

// Options returns the validator's options.
func (v *Validator) Options() Options {
	return v.opts
}

// IsBlank reports whether text is empty or whitespace only.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// Validate checks text without wrapping it. Blank input yields StatusEmpty
// without calling the parser.
func (v *Validator) Validate(text string) Outcome {
	if IsBlank(text) {
		return Outcome{Status: StatusEmpty}
	}
	body, unescaped := v.preprocess(text)
	if err := v.parser.Check(body); err != nil {
		o := failure(body, err, false)
		o.Unescaped = unescaped
		return o
	}
	return Outcome{Status: StatusValid, Unescaped: unescaped}
}

// Format re-indents text. On failure the returned string is empty.
func (v *Validator) Format(text string) (string, Outcome) {
	return v.reformat(text, v.opts.Indent)
}

// Compress re-serializes text without insignificant whitespace.
func (v *Validator) Compress(text string) (string, Outcome) {
	return v.reformat(text, "")
}

func (v *Validator) reformat(text, indent string) (string, Outcome) {
	if IsBlank(text) {
		return "", Outcome{Status: StatusEmpty}
	}

	body, unescaped := v.preprocess(text)
	wrapped := false
	if v.opts.AutoWrap {
		body, wrapped = locate.AutoWrap(body)
	}

	out, err := v.parser.Reformat(body, indent)
	if err != nil {
		o := failure(body, err, wrapped)
		o.Unescaped = unescaped
		return "", o
	}
	return out, Outcome{Status: StatusValid, Wrapped: wrapped, Unescaped: unescaped}
}

// preprocess returns the body to parse and whether escaping was removed.
// With RemoveEscape, text that already parses is left alone, so output the
// validator produced is never unescaped a second time.
func (v *Validator) preprocess(text string) (string, bool) {
	if !v.opts.RemoveEscape {
		return text, false
	}
	body := Unescape(text)
	if body == text || v.parser.Check(text) == nil {
		return text, false
	}
	return body, true
}

// failure builds an invalid outcome, locating the error against body when
// the message carries an offset.
func failure(body string, err error, wrapped bool) Outcome {
	o := Outcome{Status: StatusInvalid, Message: err.Error(), Wrapped: wrapped}
	if offset, ok := locate.ExtractOffset(o.Message); ok {
		loc := locate.LocateWithHeuristic(body, offset)
		o.Location = &loc
	}
	return o
}

// =============================================================================
// ESCAPING
// =============================================================================

// Escape adds one level of string escaping so the text can be embedded in a
// JSON string literal.
func Escape(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	return strings.ReplaceAll(text, `"`, `\"`)
}

// Unescape removes one level of \" and \\ escaping.
func Unescape(text string) string {
	text = strings.ReplaceAll(text, `\"`, `"`)
	return strings.ReplaceAll(text, `\\`, `\`)
}
