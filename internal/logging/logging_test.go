// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/toolpanel/internal/config"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatConsole, ParseFormat("whatever"))
}

func TestBuild_JSONConsole(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default().Logging
	cfg.Format = "json"
	cfg.Level = "warn"

	logger, err := NewBuilder().WithConfig(cfg).WithConsole(&buf).Build()
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	logger.Warn().Str("tool", "diff").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "diff", entry["tool"])
	assert.Equal(t, "warn", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestBuild_TextHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default().Logging
	cfg.Format = "text"

	logger, err := NewBuilder().WithConfig(cfg).WithConsole(&buf).Build()
	require.NoError(t, err)
	logger.Info().Msg("plain")

	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestBuild_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "toolpanel.log")
	cfg := config.Default().Logging
	cfg.Console = false
	cfg.File = path
	cfg.Format = "json"

	logger, err := NewBuilder().WithConfig(cfg).Build()
	require.NoError(t, err)
	logger.Info().Msg("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"to file"`)
}

func TestBuild_NoWritersIsDisabled(t *testing.T) {
	cfg := config.Default().Logging
	cfg.Console = false

	logger, err := NewBuilder().WithConfig(cfg).Build()
	require.NoError(t, err)
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}

func TestBuild_InvalidLevel(t *testing.T) {
	cfg := config.Default().Logging
	cfg.Level = "shouting"

	_, err := New(cfg)
	assert.Error(t, err)
}
