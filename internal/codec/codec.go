// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package codec converts text to and from Base64.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// ErrInvalidInput is returned when decoding fails. The underlying cause is
// wrapped.
var ErrInvalidInput = errors.New("invalid base64 input")

// Variant selects the alphabet and pre-processing.
type Variant int

const (
	// Standard is RFC 4648 base64 with padding
	Standard Variant = iota
	// URLSafe uses the URL alphabet with padding
	URLSafe
	// Raw is Standard without padding
	Raw
	// URIComponent percent-encodes the text before Standard encoding, the
	// way browser tools carry non-ASCII text through base64
	URIComponent
)

var variantNames = map[Variant]string{
	Standard:     "std",
	URLSafe:      "url",
	Raw:          "raw",
	URIComponent: "uri",
}

// String returns the short name used by flags and the HTTP API.
func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return "unknown"
}

// ParseVariant maps a short name onto a Variant. Empty means Standard.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(name) {
	case "", "std", "standard":
		return Standard, nil
	case "url", "urlsafe":
		return URLSafe, nil
	case "raw":
		return Raw, nil
	case "uri", "uricomponent":
		return URIComponent, nil
	}
	return Standard, fmt.Errorf("unknown base64 variant %q (std, url, raw, uri)", name)
}

func (v Variant) encoding() *base64.Encoding {
	switch v {
	case URLSafe:
		return base64.URLEncoding
	case Raw:
		return base64.RawStdEncoding
	default:
		return base64.StdEncoding
	}
}

// Encode encodes text with the given variant.
func Encode(text string, v Variant) string {
	if v == URIComponent {
		text = escapeURIComponent(text)
	}
	return v.encoding().EncodeToString([]byte(text))
}

// Decode decodes text with the given variant. Surrounding whitespace is
// ignored. The decoded bytes must be valid UTF-8.
func Decode(text string, v Variant) (string, error) {
	data, err := v.encoding().DecodeString(strings.TrimSpace(text))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	out := string(data)
	if v == URIComponent {
		out, err = url.PathUnescape(out)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if !utf8.ValidString(out) {
		return "", fmt.Errorf("%w: decoded bytes are not UTF-8 text", ErrInvalidInput)
	}
	return out, nil
}

// uriUnreserved restores the characters encodeURIComponent leaves alone.
var uriUnreserved = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// escapeURIComponent leaves A-Z a-z 0-9 and -_.!~*'() unescaped.
func escapeURIComponent(s string) string {
	return uriUnreserved.Replace(url.QueryEscape(s))
}
