// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for toolpanel.
//
// Supports TOML, YAML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and struct-tag validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - JSONConfig: Live validation debounce and formatting options
//   - ServerConfig: Local HTTP API listener and rate limits
//   - LoggingConfig: Log level, format and rotation
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (TOOLPANEL_*)
//   - ~/.toolpanel/config.toml
//   - ~/.toolpanel/config.yaml
//   - ~/.toolpanel/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	delay := time.Duration(cfg.JSON.DebounceMs) * time.Millisecond
package config
