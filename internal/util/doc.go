// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across toolpanel.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - StringWidth, TruncateWidth, FitWidth: Display-width aware layout
//   - ExpandTabs: Tab expansion before width calculations
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	cell := util.FitWidth(line, 40)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
