// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog logger used across toolpanel.
//
// Output fans out to the console (stderr by default) and, when a file is
// configured, to a size-rotated log file.
package logging

import (
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jeranaias/toolpanel/internal/config"
)

// =============================================================================
// FORMAT & LEVEL
// =============================================================================

// Format is a log line encoding.
type Format string

const (
	FormatConsole Format = "console" // colored, human-readable
	FormatText    Format = "text"    // human-readable without color
	FormatJSON    Format = "json"    // one JSON object per line
)

// ParseFormat maps a configured format name onto a Format. Unknown names
// fall back to FormatConsole.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON
	case FormatText:
		return FormatText
	default:
		return FormatConsole
	}
}

// ParseLevel parses a level name, defaulting to info on error.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder assembles a zerolog.Logger from configuration.
type Builder struct {
	cfg     config.LoggingConfig
	console io.Writer
	noColor bool
	global  bool
}

// NewBuilder creates a builder with default logging configuration.
func NewBuilder() *Builder {
	return &Builder{
		cfg:     config.Default().Logging,
		console: os.Stderr,
	}
}

// WithConfig sets the logging configuration.
func (b *Builder) WithConfig(cfg config.LoggingConfig) *Builder {
	b.cfg = cfg
	return b
}

// WithConsole redirects console output. A nil writer disables it, which the
// interactive panel uses so log lines never tear the alt screen.
func (b *Builder) WithConsole(w io.Writer) *Builder {
	b.console = w
	return b
}

// WithNoColor disables ANSI colors on the console writer.
func (b *Builder) WithNoColor(noColor bool) *Builder {
	b.noColor = noColor
	return b
}

// WithGlobal makes Build set the zerolog global level and route the
// standard library logger through the result.
func (b *Builder) WithGlobal() *Builder {
	b.global = true
	return b
}

// Build creates the logger. With no console and no file it returns a
// disabled logger.
func (b *Builder) Build() (zerolog.Logger, error) {
	level, err := ParseLevel(b.cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if b.cfg.File != "" && b.cfg.MaxSizeMB <= 0 {
		return zerolog.Nop(), errors.New("logging.max_size_mb must be positive when a log file is set")
	}

	format := ParseFormat(b.cfg.Format)
	var writers []io.Writer
	if b.cfg.Console && b.console != nil {
		writers = append(writers, b.formatWriter(b.console, format, b.noColor))
	}
	if b.cfg.File != "" {
		fw, err := b.fileWriter(format)
		if err != nil {
			return zerolog.Nop(), err
		}
		writers = append(writers, fw)
	}
	if len(writers) == 0 {
		return zerolog.Nop(), nil
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if b.global {
		zerolog.SetGlobalLevel(level)
		stdlog.SetOutput(logger)
		stdlog.SetFlags(0)
	}
	return logger, nil
}

func (b *Builder) formatWriter(w io.Writer, format Format, noColor bool) io.Writer {
	switch format {
	case FormatJSON:
		return w
	case FormatText:
		noColor = true
	}
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: noColor}
}

func (b *Builder) fileWriter(format Format) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(b.cfg.File), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	lj := &lumberjack.Logger{
		Filename:   b.cfg.File,
		MaxSize:    b.cfg.MaxSizeMB,
		MaxBackups: b.cfg.MaxBackups,
		LocalTime:  true,
	}
	// Files never get color codes.
	return b.formatWriter(lj, format, true), nil
}

// New builds a logger from cfg writing to stderr.
func New(cfg config.LoggingConfig) (zerolog.Logger, error) {
	return NewBuilder().WithConfig(cfg).Build()
}
