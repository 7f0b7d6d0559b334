// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TOOLPANEL_HOME", dir)
	for _, key := range []string{
		"TOOLPANEL_LOG_LEVEL", "TOOLPANEL_LOG_FORMAT", "TOOLPANEL_LOG_FILE",
		"TOOLPANEL_HOST", "TOOLPANEL_PORT", "TOOLPANEL_DEBOUNCE_MS",
		"TOOLPANEL_HISTORY", "TOOLPANEL_THEME",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 300, cfg.JSON.DebounceMs)
	assert.Equal(t, "  ", cfg.IndentString())
	assert.Equal(t, "127.0.0.1:8787", cfg.Server.Addr())
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_TOML(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), `
[json]
debounce_ms = 500
use_tabs = true

[server]
port = 9000
cors_origins = ["http://localhost:3000"]
`)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 500, cfg.JSON.DebounceMs)
	assert.Equal(t, "\t", cfg.IndentString())
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	// Untouched values keep their defaults
	assert.True(t, cfg.JSON.AutoWrap)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_YAMLWhenNoTOML(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), `
diff:
  context_lines: 5
  inline: false
logging:
  level: debug
  format: json
`)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Diff.ContextLines)
	assert.False(t, cfg.Diff.Inline)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_TOMLTakesPrecedence(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), "[ui]\ntheme = \"dark\"\n")
	writeFile(t, filepath.Join(dir, "config.json"), `{"ui": {"theme": "light"}}`)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.UI.Theme)
}

func TestLoad_BrokenFileFallsBack(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), "[json\n")
	writeFile(t, filepath.Join(dir, "config.json"), `{"json": {"indent": 4}}`)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.JSON.Indent)
}

func TestLoad_InvalidValueRejected(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), "[logging]\nlevel = \"loud\"\n")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestLoadFromPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "custom.toml", "[server]\nport = 7000\n"},
		{"yaml", "custom.yml", "server:\n  port: 7000\n"},
		{"json", "custom.json", `{"server": {"port": 7000}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			writeFile(t, path, tt.content)

			cfg, err := LoadFromPath(path)

			require.NoError(t, err)
			assert.Equal(t, 7000, cfg.Server.Port)
		})
	}

	_, err := LoadFromPath(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TOOLPANEL_PORT", "9999")
	t.Setenv("TOOLPANEL_LOG_LEVEL", "warn")
	t.Setenv("TOOLPANEL_DEBOUNCE_MS", "120")
	t.Setenv("TOOLPANEL_HISTORY", "false")
	t.Setenv("TOOLPANEL_THEME", "light")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 120, cfg.JSON.DebounceMs)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 70000
	cfg.UI.Theme = "neon"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()

	var errs ValidateErrors
	require.ErrorAs(t, err, &errs)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"server.port", "ui.theme", "logging.format"}, fields)
}

func TestValidate_Host(t *testing.T) {
	cfg := Default()
	for _, host := range []string{"localhost", "0.0.0.0", "::1", "panel.internal"} {
		cfg.Server.Host = host
		assert.NoError(t, cfg.Validate(), host)
	}

	cfg.Server.Host = "not a host"
	assert.Error(t, cfg.Validate())
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Server.Port = 8123
	cfg.UI.Theme = "dark"
	require.NoError(t, SaveTOML(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# toolpanel configuration file")

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveYAMLAndJSON(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfg := Default()
	cfg.Diff.ContextLines = 7

	require.NoError(t, SaveYAML(cfg, filepath.Join(dir, "c.yaml")))
	require.NoError(t, SaveJSON(cfg, filepath.Join(dir, "c.json")))

	for _, name := range []string{"c.yaml", "c.json"} {
		loaded, err := LoadFromPath(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, 7, loaded.Diff.ContextLines, name)
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("server.port", "9100"))
	require.NoError(t, cfg.Set("json.auto_wrap", "false"))
	require.NoError(t, cfg.Set("server.cors_origins", "http://a, http://b"))
	require.NoError(t, cfg.Set("server.rate_limit_rps", 2.5))
	require.NoError(t, cfg.Set("ui.theme", "dark"))

	v, err := cfg.Get("server.port")
	require.NoError(t, err)
	assert.Equal(t, 9100, v)
	assert.False(t, cfg.JSON.AutoWrap)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 2.5, cfg.Server.RateLimitRPS)
	assert.Equal(t, "dark", cfg.UI.Theme)

	_, err = cfg.Get("server.nope")
	assert.Error(t, err)
	_, err = cfg.Get("server")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("server.port", "eighty"))
	assert.Error(t, cfg.Set("", "x"))
}

func TestGetAllKeys_Resolvable(t *testing.T) {
	cfg := Default()
	keys := GetAllKeys()

	assert.Contains(t, keys, "json.debounce_ms")
	assert.Contains(t, keys, "server.cors_origins")
	for _, key := range keys {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestClone_DeepCopiesSlices(t *testing.T) {
	cfg := Default()
	cfg.Server.CORSOrigins = []string{"http://a"}

	clone := cfg.Clone()
	clone.Server.CORSOrigins[0] = "http://b"

	assert.Equal(t, "http://a", cfg.Server.CORSOrigins[0])
}

func TestHistoryPath(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	path, err := cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "history.db"), path)

	cfg.History.Path = "/tmp/elsewhere.db"
	path, err = cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere.db", path)
}

// TestConfig_ConcurrentAccess checks Global and SetGlobal under the race
// detector.
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			assert.NotNil(t, Global())
		}()
	}
	wg.Wait()
}

func TestReloadGlobal(t *testing.T) {
	dir := isolate(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	assert.Equal(t, 8787, Global().Server.Port)

	writeFile(t, filepath.Join(dir, "config.toml"), "[server]\nport = 8800\n")
	require.NoError(t, ReloadGlobal())

	assert.Equal(t, 8800, Global().Server.Port)
}
