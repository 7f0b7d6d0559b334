// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package jsonfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// =============================================================================
// PARSER
// =============================================================================

// Parser is the structured-data engine the validator delegates to. Check
// reports whether text is a single well-formed document; Reformat
// re-serializes it with the given indent, or compactly when indent is empty.
//
// Failures are reported through Error(). A message that embeds
// "position N" lets the validator locate the failure; any other message is
// surfaced as-is.
type Parser interface {
	Check(text string) error
	Reformat(text, indent string) (string, error)
}

const unexpectedEOF = "unexpected end of JSON input"

// SyntaxError is a parse failure at a 0-based character position.
type SyntaxError struct {
	Reason   string
	Position int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Reason, e.Position)
}

// StdParser adapts encoding/json. Key order and number literals are
// preserved because documents are re-indented, never decoded into values.
type StdParser struct{}

// Check implements Parser.
func (StdParser) Check(text string) error {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return translateError(text, err)
	}
	return nil
}

// Reformat implements Parser.
func (p StdParser) Reformat(text, indent string) (string, error) {
	// json.Indent and json.Compact do not track offsets, so validate first.
	if err := p.Check(text); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	var err error
	if indent == "" {
		err = json.Compact(&buf, []byte(text))
	} else {
		err = json.Indent(&buf, []byte(text), "", indent)
	}
	if err != nil {
		return "", translateError(text, err)
	}
	return buf.String(), nil
}

// translateError rewrites a *json.SyntaxError into a SyntaxError whose
// position is a character index. encoding/json reports the count of bytes
// consumed, which includes the offending byte, except at end of input.
func translateError(text string, err error) error {
	var se *json.SyntaxError
	if !errors.As(err, &se) {
		return err
	}

	pos := int(se.Offset)
	if se.Error() != unexpectedEOF {
		pos--
	}
	pos = max(0, min(pos, len(text)))
	return &SyntaxError{
		Reason:   se.Error(),
		Position: utf8.RuneCountInString(text[:pos]),
	}
}
