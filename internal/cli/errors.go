// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/jeranaias/toolpanel/internal/config"
	"github.com/jeranaias/toolpanel/internal/history"
	"github.com/jeranaias/toolpanel/internal/texttools"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitInvalid indicates the input was checked and rejected (invalid JSON,
	// undecodable base64, unparseable date)
	ExitInvalid = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error
	ExitConfigError = 3
	// ExitNotFoundError indicates a file or history entry was not found
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ExitError carries an exit code. A nil Err means the command already
// reported the problem and nothing more should be printed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// silentExit ends the command with code after output was already written.
func silentExit(code int) error {
	return &ExitError{Code: code}
}

// UsageError reports invalid arguments.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Reason: fmt.Sprintf(format, args...)}
}

// GetExitCode determines the exit code for an error returned by a command.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var usageErr *UsageError
	var cfgErrs config.ValidateErrors
	switch {
	case errors.As(err, &usageErr), errors.Is(err, texttools.ErrUnknownOp):
		return ExitUsageError
	case errors.As(err, &cfgErrs):
		return ExitConfigError
	case errors.Is(err, history.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return ExitNotFoundError
	}
	// Rejected input (bad base64, unparseable dates) and everything else.
	return ExitInvalid
}
