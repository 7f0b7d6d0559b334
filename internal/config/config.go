// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for toolpanel.
//
// Supports TOML, YAML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.toolpanel/config.toml
//   - ~/.toolpanel/config.yaml
//   - ~/.toolpanel/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/toolpanel/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete toolpanel configuration.
type Config struct {
	// Version of the config file layout
	Version string `toml:"version" yaml:"version" json:"version"`

	// JSON validation and formatting
	JSON JSONConfig `toml:"json" yaml:"json" json:"json"`

	// Text comparison
	Diff DiffConfig `toml:"diff" yaml:"diff" json:"diff"`

	// Local HTTP API
	Server ServerConfig `toml:"server" yaml:"server" json:"server"`

	// Logging output
	Logging LoggingConfig `toml:"logging" yaml:"logging" json:"logging"`

	// Run history
	History HistoryConfig `toml:"history" yaml:"history" json:"history"`

	// Interactive panel
	UI UIConfig `toml:"ui" yaml:"ui" json:"ui"`
}

// JSONConfig controls validation and formatting of JSON input.
type JSONConfig struct {
	// DebounceMs is the quiet period before live validation runs
	DebounceMs int `toml:"debounce_ms" yaml:"debounce_ms" json:"debounce_ms" validate:"min=10,max=10000"`
	// Indent is the number of spaces per level when formatting
	Indent int `toml:"indent" yaml:"indent" json:"indent" validate:"min=1,max=8"`
	// UseTabs indents with tabs instead of spaces
	UseTabs bool `toml:"use_tabs" yaml:"use_tabs" json:"use_tabs"`
	// AutoWrap wraps bare fragments in braces before formatting
	AutoWrap bool `toml:"auto_wrap" yaml:"auto_wrap" json:"auto_wrap"`
	// RemoveEscape strips one level of \" and \\ escaping before parsing
	RemoveEscape bool `toml:"remove_escape" yaml:"remove_escape" json:"remove_escape"`
}

// DiffConfig controls text comparison output.
type DiffConfig struct {
	// ContextLines is the number of unchanged lines around each unified hunk
	ContextLines int `toml:"context_lines" yaml:"context_lines" json:"context_lines" validate:"min=0,max=100"`
	// Inline enables character-level highlighting of changed rows
	Inline bool `toml:"inline" yaml:"inline" json:"inline"`
}

// ServerConfig controls the local HTTP API.
type ServerConfig struct {
	Host           string   `toml:"host" yaml:"host" json:"host" validate:"required,hostname|ip"`
	Port           int      `toml:"port" yaml:"port" json:"port" validate:"min=1,max=65535"`
	RateLimitRPS   float64  `toml:"rate_limit_rps" yaml:"rate_limit_rps" json:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int      `toml:"rate_limit_burst" yaml:"rate_limit_burst" json:"rate_limit_burst" validate:"min=1"`
	MaxBodyBytes   int64    `toml:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes" validate:"min=1024"`
	CORSOrigins    []string `toml:"cors_origins" yaml:"cors_origins" json:"cors_origins" validate:"dive,required"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level      string `toml:"level" yaml:"level" json:"level" validate:"loglevel"`
	Format     string `toml:"format" yaml:"format" json:"format" validate:"logformat"`
	File       string `toml:"file" yaml:"file" json:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb" json:"max_size_mb" validate:"min=1"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups" json:"max_backups" validate:"min=0"`
	Console    bool   `toml:"console" yaml:"console" json:"console"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled" json:"enabled"`
	// Path is the SQLite database path (empty = ~/.toolpanel/history.db)
	Path       string `toml:"path" yaml:"path" json:"path"`
	MaxEntries int    `toml:"max_entries" yaml:"max_entries" json:"max_entries" validate:"min=1"`
}

// UIConfig controls the interactive panel.
type UIConfig struct {
	Theme           string `toml:"theme" yaml:"theme" json:"theme" validate:"oneof=auto dark light"`
	ShowLineNumbers bool   `toml:"show_line_numbers" yaml:"show_line_numbers" json:"show_line_numbers"`
	Highlight       bool   `toml:"highlight" yaml:"highlight" json:"highlight"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		JSON: JSONConfig{
			DebounceMs: 300,
			Indent:     2,
			AutoWrap:   true,
		},
		Diff: DiffConfig{
			ContextLines: 3,
			Inline:       true,
		},
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8787,
			RateLimitRPS:   20,
			RateLimitBurst: 40,
			MaxBodyBytes:   4 << 20,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Console:    true,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 500,
		},
		UI: UIConfig{
			Theme:           "auto",
			ShowLineNumbers: true,
			Highlight:       true,
		},
	}
}

// IndentString returns the indent unit for formatting.
func (c *Config) IndentString() string {
	if c.JSON.UseTabs {
		return "\t"
	}
	return strings.Repeat(" ", c.JSON.Indent)
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the toolpanel configuration directory path.
// TOOLPANEL_HOME overrides the default ~/.toolpanel.
func ConfigDir() (string, error) {
	if dir := os.Getenv("TOOLPANEL_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".toolpanel"), nil
}

func configPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) { return configPath("config.toml") }

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) { return configPath("config.yaml") }

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) { return configPath("config.json") }

// HistoryPath returns the configured history database path.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	return configPath("history.db")
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config directory.
// Tries TOML, then YAML, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	loaders := []struct {
		path func() (string, error)
		load func(*Config, string) error
	}{
		{ConfigPathTOML, LoadTOML},
		{ConfigPathYAML, LoadYAML},
		{ConfigPathJSON, LoadJSON},
	}

	var loadErr error
	for _, l := range loaders {
		path, err := l.path()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}

		cfg := Default()
		if err := l.load(cfg, path); err != nil {
			loadErr = err
			continue
		}
		if err := finalize(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := Default()
	if err := finalize(cfg); err != nil {
		return nil, err
	}
	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file. The format follows
// the extension; anything other than .json, .yaml or .yml is read as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = LoadJSON(cfg, path)
	case ".yaml", ".yml":
		err = LoadYAML(cfg, path)
	default:
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, err
	}

	if err := finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML config %s: %w", path, err)
	}
	return nil
}

// LoadYAML decodes a YAML file over cfg.
func LoadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML config %s: %w", path, err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON config %s: %w", path, err)
	}
	return nil
}

// finalize applies environment overrides, defaults and validation.
func finalize(cfg *Config) error {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// JSON
	if cfg.JSON.DebounceMs == 0 {
		cfg.JSON.DebounceMs = defaults.JSON.DebounceMs
	}
	if cfg.JSON.Indent == 0 {
		cfg.JSON.Indent = defaults.JSON.Indent
	}

	// Server
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaults.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = defaults.Server.RateLimitBurst
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}

	// Logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaults.Logging.Format
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
	}

	// History
	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = defaults.History.MaxEntries
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with a header comment.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# toolpanel configuration file\n")
	buf.WriteString("# Generated by toolpanel - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveYAML writes the configuration as YAML.
func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as indented JSON.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - TOOLPANEL_LOG_LEVEL: overrides logging.level
//   - TOOLPANEL_LOG_FORMAT: overrides logging.format
//   - TOOLPANEL_LOG_FILE: overrides logging.file
//   - TOOLPANEL_HOST: overrides server.host
//   - TOOLPANEL_PORT: overrides server.port
//   - TOOLPANEL_DEBOUNCE_MS: overrides json.debounce_ms
//   - TOOLPANEL_HISTORY: "0"/"false" disables run history
//   - TOOLPANEL_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if level := os.Getenv("TOOLPANEL_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("TOOLPANEL_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	if file := os.Getenv("TOOLPANEL_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
	if host := os.Getenv("TOOLPANEL_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("TOOLPANEL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if ms := os.Getenv("TOOLPANEL_DEBOUNCE_MS"); ms != "" {
		if d, err := strconv.Atoi(ms); err == nil {
			c.JSON.DebounceMs = d
		}
	}
	if history := os.Getenv("TOOLPANEL_HISTORY"); history != "" {
		c.History.Enabled = parseBool(history)
	}
	if theme := os.Getenv("TOOLPANEL_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "json.indent").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "server.port").
// String values are converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			field.SetBool(parseBool(strVal))
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, item := range strings.Split(strVal, ",") {
					if item = strings.TrimSpace(item); item != "" {
						items = append(items, item)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return errors.New("cannot assign nil value")
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation, sorted.
func GetAllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		prefix := strings.Split(section.Tag.Get("toml"), ",")[0]
		if section.Type.Kind() != reflect.Struct {
			keys = append(keys, prefix)
			continue
		}
		for j := 0; j < section.Type.NumField(); j++ {
			name := strings.Split(section.Type.Field(j).Tag.Get("toml"), ",")[0]
			keys = append(keys, prefix+"."+name)
		}
	}
	sort.Strings(keys)
	return keys
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Server.CORSOrigins != nil {
		clone.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	}
	return &clone
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
