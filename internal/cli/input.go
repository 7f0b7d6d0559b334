// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// MaxInputBytes bounds what a command reads from a file or stdin.
const MaxInputBytes = 64 << 20

// addInputFlag registers --input/-i for passing text on the command line
// instead of a file or stdin.
func addInputFlag(cmd *cobra.Command) *string {
	return cmd.Flags().StringP("input", "i", "", "Use this text as input instead of FILE or stdin")
}

// readInput returns the command's input text and a display name for it.
// Precedence: --input, then FILE, then stdin (also for FILE "-").
func readInput(cmd *cobra.Command, args []string, inline *string) (text, name string, err error) {
	if inline != nil && cmd.Flags().Changed("input") {
		return *inline, "input", nil
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), MaxInputBytes+1))
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(data) > MaxInputBytes {
			return "", "", fmt.Errorf("stdin exceeds %d bytes", MaxInputBytes)
		}
		return string(data), "stdin", nil
	}
	return readFile(args[0])
}

func readFile(path string) (string, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", "", err
	}
	if info.IsDir() {
		return "", "", usageErrorf("%s is a directory", path)
	}
	if info.Size() > MaxInputBytes {
		return "", "", fmt.Errorf("%s exceeds %d bytes", path, MaxInputBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(data), path, nil
}
