// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the run history as a shareable report.
//
// # Key Types
//
//   - Report: A titled list of history entries
//   - Exporter: Renders a report in one format
//   - Options: Output directory, metadata and theme settings
//
// # Supported Formats
//
//   - JSON: Machine-readable entries plus report metadata
//   - Markdown: A table with YAML frontmatter
//   - HTML: A standalone page styled for browsers
//
// # Usage
//
//	report := export.NewReport("Recent runs", entries)
//	exporter, err := export.ForFormat("md", opts)
//	path, err := export.ExportToFile(report, exporter, opts)
package export
