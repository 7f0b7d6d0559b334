// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff aligns two bodies of text line by line for side-by-side
// comparison.
//
// The alignment is a greedy index-synchronized walk: line k of the left side
// is compared with line k of the right side and never resynchronized after an
// insertion or deletion. It answers "did line k change" in O(n) and is not a
// minimal edit script.
//
// # Key Types
//
//   - Origin: Whether an entry is common, left-only or right-only
//   - Entry: One aligned line with its per-side line numbers
//   - Result: The ordered alignment of one comparison
//   - Stats: Counts derived from a Result by Tally
//   - Hunk: Changed entries grouped with surrounding context
//   - Row: A left/right pair for two-pane rendering
//
// # Usage
//
// Align two texts and summarize:
//
//	result := diff.AlignText(before, after)
//	fmt.Println(result.Summary())
//
// Render unified output:
//
//	fmt.Print(diff.FormatUnified("before.txt", "after.txt", result, 3))
package diff
