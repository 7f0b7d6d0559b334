// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the toolpanel command line.
//
// Every tool is reachable as a cobra sub-command; the same command tree backs
// the interactive shell. Commands print human-readable output by default and
// the {success, data, error, timestamp, command} envelope with --json.
//
// # Key Types
//
//   - JSONResponse: The machine-readable output envelope
//   - ExitError: Carries a process exit code through cobra
//
// # Commands Overview
//
// Tools:
//   - diff, validate, format, compress, escape, unescape, locate
//   - text, base64, time
//
// Surfaces:
//   - serve: Local HTTP API
//   - panel: Interactive TUI
//   - shell: Line-editing REPL over the tool commands
//
// Management:
//   - history, config, version
//
// # Usage
//
//	func main() {
//	    os.Exit(cli.Execute())
//	}
package cli
