// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package timeconv converts between Unix timestamps and calendar dates.
package timeconv

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the display format for converted dates.
const DateLayout = "2006-01-02 15:04:05"

// maxMillis is the largest instant a timestamp may name (±100,000,000 days).
const maxMillis = 8.64e15

var (
	// ErrEmpty is returned for blank input.
	ErrEmpty = errors.New("empty input")
	// ErrInvalidTimestamp is returned when the value is not a number.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrInvalidDate is returned when the date matches no known layout.
	ErrInvalidDate = errors.New("invalid date")
	// ErrOutOfRange is returned for instants outside the supported range.
	ErrOutOfRange = errors.New("timestamp out of range")
)

// Unit is the resolution of a timestamp.
type Unit int

const (
	Seconds Unit = iota
	Milliseconds
)

// String returns the short unit name.
func (u Unit) String() string {
	if u == Milliseconds {
		return "ms"
	}
	return "s"
}

// ParseUnit maps a unit name onto a Unit. Empty means Seconds.
func ParseUnit(name string) (Unit, error) {
	switch strings.ToLower(name) {
	case "", "s", "sec", "seconds":
		return Seconds, nil
	case "ms", "millis", "milliseconds":
		return Milliseconds, nil
	}
	return Seconds, fmt.Errorf("unknown timestamp unit %q (s, ms)", name)
}

// DetectUnit guesses the unit from magnitude: 1e12 and above is taken as
// milliseconds. Non-numeric input reports Seconds.
func DetectUnit(value string) Unit {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err == nil && math.Abs(n) >= 1e12 {
		return Milliseconds
	}
	return Seconds
}

// dateLayouts are tried in order by ToTimestamp.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
}

// ToDate formats a timestamp as DateLayout in loc. A nil loc means UTC.
// Fractional values are accepted and truncated to the millisecond.
func ToDate(value string, unit Unit, loc *time.Location) (string, error) {
	t, err := ParseTimestamp(value, unit)
	if err != nil {
		return "", err
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout), nil
}

// ParseTimestamp converts a numeric timestamp into a time.
func ParseTimestamp(value string, unit Unit) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmpty
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}
	ms := n
	if unit == Seconds {
		ms = n * 1000
	}
	if math.Abs(ms) > maxMillis {
		return time.Time{}, fmt.Errorf("%w: %q", ErrOutOfRange, value)
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}

// ToTimestamp parses a date and returns its timestamp in unit. Dates without
// a zone are read in loc; a nil loc means UTC. Seconds are floored.
func ToTimestamp(date string, unit Unit, loc *time.Location) (int64, error) {
	t, err := ParseDate(date, loc)
	if err != nil {
		return 0, err
	}
	return Timestamp(t, unit), nil
}

// ParseDate parses a date using the first matching layout.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, ErrEmpty
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, date, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
}

// Timestamp returns t as a Unix timestamp in unit.
func Timestamp(t time.Time, unit Unit) int64 {
	ms := t.UnixMilli()
	if unit == Milliseconds {
		return ms
	}
	return int64(math.Floor(float64(ms) / 1000))
}

// Now returns the current Unix timestamp in unit.
func Now(unit Unit) int64 {
	return Timestamp(time.Now(), unit)
}
