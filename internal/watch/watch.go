// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch feeds the contents of a file into an editor buffer every
// time the file changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// MaxFileSize caps how much of a watched file is read.
const MaxFileSize = 16 << 20

// ErrTooLarge is returned when the watched file exceeds MaxFileSize.
var ErrTooLarge = errors.New("file too large to watch")

// Editor receives file contents. *schedule.Scheduler satisfies it; the
// debounce happens there.
type Editor interface {
	Edit(text string)
}

// FileWatcher watches one file. The parent directory is watched so editors
// that save through rename-and-replace keep being followed.
type FileWatcher struct {
	path    string
	editor  Editor
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(fw *FileWatcher) {
		fw.logger = l
	}
}

// New creates a watcher for path that forwards contents to editor.
func New(path string, editor Editor, opts ...Option) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(abs); err != nil {
		return nil, err
	} else if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	fw := &FileWatcher{
		path:    abs,
		editor:  editor,
		watcher: w,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(fw)
	}
	return fw, nil
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string {
	return fw.path
}

// Run loads the file once, then forwards every change until ctx is done.
// It closes the underlying watcher on return.
func (fw *FileWatcher) Run(ctx context.Context) error {
	defer fw.watcher.Close()

	if err := fw.load(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				// Removed or renamed away; wait for the replacement
				continue
			}
			if err := fw.load(); err != nil {
				fw.logger.Warn().Err(err).Str("path", fw.path).Msg("reload failed")
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn().Err(err).Msg("watch error")
		}
	}
}

func (fw *FileWatcher) load() error {
	info, err := os.Stat(fw.path)
	if err != nil {
		return err
	}
	if info.Size() > MaxFileSize {
		return fmt.Errorf("%w: %s (%d bytes)", ErrTooLarge, fw.path, info.Size())
	}
	data, err := os.ReadFile(fw.path)
	if err != nil {
		return err
	}
	fw.logger.Debug().Str("path", fw.path).Int("bytes", len(data)).Msg("file changed")
	fw.editor.Edit(string(data))
	return nil
}
