// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package jsonfmt

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/toolpanel/internal/locate"
)

// countingParser records calls and delegates to StdParser.
type countingParser struct {
	checks    int
	reformats int
}

func (p *countingParser) Check(text string) error {
	p.checks++
	return StdParser{}.Check(text)
}

func (p *countingParser) Reformat(text, indent string) (string, error) {
	p.reformats++
	return StdParser{}.Reformat(text, indent)
}

// opaqueParser fails without an offset.
type opaqueParser struct{}

func (opaqueParser) Check(string) error { return errors.New("parser exploded") }
func (opaqueParser) Reformat(string, string) (string, error) {
	return "", errors.New("parser exploded")
}

func TestStdParser_PositionIsOffendingCharacter(t *testing.T) {
	err := StdParser{}.Check(`{"a": 1 "b": 2}`)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 8, se.Position)
	assert.Contains(t, err.Error(), "at position 8")
}

func TestStdParser_PositionCountsRunes(t *testing.T) {
	err := StdParser{}.Check(`{"é": 1 x}`)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 8, se.Position)
}

func TestStdParser_UnexpectedEOF(t *testing.T) {
	text := `{"a": [1, 2`
	err := StdParser{}.Check(text)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, len(text), se.Position)
}

func TestStdParser_ReformatPreservesKeyOrder(t *testing.T) {
	out, err := StdParser{}.Reformat(`{"z":1,"a":[true,null],"m":1.50}`, "  ")
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"z\": 1,\n  \"a\": [\n    true,\n    null\n  ],\n  \"m\": 1.50\n}", out)
}

func TestValidator_Empty(t *testing.T) {
	p := &countingParser{}
	v := NewValidator(p, Options{})

	for _, text := range []string{"", "   ", "\n\t  \r\n"} {
		assert.Equal(t, Outcome{Status: StatusEmpty}, v.Validate(text))

		out, o := v.Format(text)
		assert.Empty(t, out)
		assert.Equal(t, StatusEmpty, o.Status)
	}
	assert.Zero(t, p.checks)
	assert.Zero(t, p.reformats)
}

func TestValidator_Valid(t *testing.T) {
	v := NewValidator(nil, Options{})

	o := v.Validate(`{"ok": true}`)

	assert.True(t, o.Valid())
	assert.Nil(t, o.Location)
	assert.Empty(t, o.Message)
}

func TestValidator_InvalidIsLocated(t *testing.T) {
	v := NewValidator(nil, Options{})

	o := v.Validate("{\n  \"a\": 1\n  \"b\": 2\n}")

	require.Equal(t, StatusInvalid, o.Status)
	require.NotNil(t, o.Location)
	assert.Equal(t, locate.Location{Line: 3, Column: 3}, *o.Location)
	assert.Contains(t, o.Message, "after object key:value pair")
	assert.False(t, o.Wrapped)
}

func TestValidator_InvalidWithoutOffset(t *testing.T) {
	v := NewValidator(opaqueParser{}, Options{})

	o := v.Validate(`{}`)

	assert.Equal(t, StatusInvalid, o.Status)
	assert.Equal(t, "parser exploded", o.Message)
	assert.Nil(t, o.Location)
	assert.Equal(t, "parser exploded", o.String())
}

func TestValidator_ValidateDoesNotWrap(t *testing.T) {
	v := NewValidator(nil, Options{AutoWrap: true})

	o := v.Validate(`"key": "value"`)

	assert.Equal(t, StatusInvalid, o.Status)
	assert.False(t, o.Wrapped)
}

func TestValidator_Format(t *testing.T) {
	v := NewValidator(nil, Options{})

	out, o := v.Format(`{"a":1,"b":[1,2]}`)

	require.True(t, o.Valid())
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    1,\n    2\n  ]\n}", out)
}

func TestValidator_FormatCustomIndent(t *testing.T) {
	v := NewValidator(nil, Options{Indent: "\t"})

	out, o := v.Format(`[1]`)

	require.True(t, o.Valid())
	assert.Equal(t, "[\n\t1\n]", out)
}

func TestValidator_FormatOutputValidates(t *testing.T) {
	v := NewValidator(nil, Options{AutoWrap: true})
	inputs := []string{
		`{"a":{"b":[1,2,{"c":null}]},"d":"x\"y"}`,
		`[]`,
		`"name": "toolpanel", "tags": ["a", "b"]`,
	}

	for _, in := range inputs {
		out, o := v.Format(in)
		require.True(t, o.Valid(), in)
		assert.True(t, v.Validate(out).Valid(), out)

		compact, o := v.Compress(out)
		require.True(t, o.Valid())
		assert.True(t, v.Validate(compact).Valid(), compact)
	}
}

func TestValidator_AutoWrapFragment(t *testing.T) {
	v := NewValidator(nil, Options{AutoWrap: true})

	out, o := v.Format(`"name": "toolpanel"`)

	require.True(t, o.Valid())
	assert.True(t, o.Wrapped)
	assert.Equal(t, "{\n  \"name\": \"toolpanel\"\n}", out)
}

func TestValidator_AutoWrapFailureLocatedAgainstWrappedBody(t *testing.T) {
	v := NewValidator(nil, Options{AutoWrap: true})

	// Wrapped body is `{"a": 1 "b": 2}`; the stray quote is at index 8.
	_, o := v.Format(`"a": 1 "b": 2`)

	require.Equal(t, StatusInvalid, o.Status)
	assert.True(t, o.Wrapped)
	require.NotNil(t, o.Location)
	assert.Equal(t, locate.Location{Line: 1, Column: 9}, *o.Location)
}

func TestValidator_Compress(t *testing.T) {
	v := NewValidator(nil, Options{})

	out, o := v.Compress("{\n  \"a\": [1, 2],\n  \"b\": \"x y\"\n}")

	require.True(t, o.Valid())
	assert.Equal(t, `{"a":[1,2],"b":"x y"}`, out)
}

func TestValidator_RemoveEscape(t *testing.T) {
	escaped := `{\"path\": \"C:\\\\tmp\"}`

	plain := NewValidator(nil, Options{})
	assert.Equal(t, StatusInvalid, plain.Validate(escaped).Status)

	v := NewValidator(nil, Options{RemoveEscape: true})
	assert.True(t, v.Validate(escaped).Valid())

	out, o := v.Compress(escaped)
	require.True(t, o.Valid())
	assert.Equal(t, `{"path":"C:\\tmp"}`, out)
}

func TestValidator_RemoveEscapeFormatOutputValidates(t *testing.T) {
	v := NewValidator(nil, Options{RemoveEscape: true})
	inputs := []string{
		`{"a":"x\\\"y"}`,
		`{\"path\": \"C:\\\\tmp\", \"q\": \"say \\\"hi\\\"\"}`,
		`{"a":"x\"y"}`,
	}

	for _, in := range inputs {
		out, o := v.Format(in)
		require.True(t, o.Valid(), in)
		assert.True(t, v.Validate(out).Valid(), out)

		again, o := v.Format(out)
		require.True(t, o.Valid(), out)
		assert.Equal(t, out, again)
	}
}

func TestValidator_RemoveEscapeLeavesValidInputAlone(t *testing.T) {
	v := NewValidator(nil, Options{RemoveEscape: true})

	o := v.Validate(`{"a":"x\"y"}`)
	assert.True(t, o.Valid())
	assert.False(t, o.Unescaped)

	o = v.Validate(`{\"a\": 1}`)
	assert.True(t, o.Valid())
	assert.True(t, o.Unescaped)
}

func TestValidator_UnescapedFailureDoesNotLocateInput(t *testing.T) {
	v := NewValidator(nil, Options{RemoveEscape: true})

	o := v.Validate(`{\"a\": \"b\", \"c\": }`)

	require.Equal(t, StatusInvalid, o.Status)
	assert.True(t, o.Unescaped)
	require.NotNil(t, o.Location)
	assert.False(t, o.LocatesInput())

	plain := NewValidator(nil, Options{}).Validate(`{"c": }`)
	assert.True(t, plain.LocatesInput())
}

func TestEscapeUnescape(t *testing.T) {
	assert.Equal(t, `{\"a\": \"b\\\\c\"}`, Escape(`{"a": "b\\c"}`))
	assert.Equal(t, `{"a": "b\c"}`, Unescape(`{\"a\": \"b\\c\"}`))
	assert.Equal(t, `say "hi" \ bye`, Unescape(Escape(`say "hi" \ bye`)))
}

func TestOutcome_String(t *testing.T) {
	loc := locate.Location{Line: 2, Column: 5}
	o := Outcome{Status: StatusInvalid, Message: "bad", Location: &loc}

	assert.Equal(t, "line 2, column 5: bad", o.String())
	assert.Equal(t, "valid JSON", Outcome{Status: StatusValid}.String())
	assert.Equal(t, "empty input", Outcome{}.String())
}

func TestOutcome_JSON(t *testing.T) {
	loc := locate.Location{Line: 1, Column: 2}
	data, err := json.Marshal(Outcome{Status: StatusInvalid, Message: "bad", Location: &loc})
	require.NoError(t, err)

	assert.JSONEq(t, `{"status":"invalid","message":"bad","location":{"line":1,"column":2}}`, string(data))
}
