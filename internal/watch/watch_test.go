// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEditor struct {
	mu    sync.Mutex
	texts []string
}

func (e *recordingEditor) Edit(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.texts = append(e.texts, text)
}

func (e *recordingEditor) last() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.texts) == 0 {
		return ""
	}
	return e.texts[len(e.texts)-1]
}

func TestFileWatcher_ForwardsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"v": 1}`), 0644))

	editor := &recordingEditor{}
	fw, err := New(path, editor)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fw.Run(ctx) }()

	require.Eventually(t, func() bool { return editor.last() == `{"v": 1}` },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"v": 2}`), 0644))
	assert.Eventually(t, func() bool { return editor.last() == `{"v": 2}` },
		2*time.Second, 10*time.Millisecond)

	// Rename-and-replace save
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(`{"v": 3}`), 0644))
	require.NoError(t, os.Rename(tmp, path))
	assert.Eventually(t, func() bool { return editor.last() == `{"v": 3}` },
		2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFileWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

	editor := &recordingEditor{}
	fw, err := New(path, editor)
	require.NoError(t, err)
	assert.Equal(t, path, fw.Path())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fw.Run(ctx)

	require.Eventually(t, func() bool { return editor.last() == `[]` },
		2*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{}`), 0644))
	time.Sleep(100 * time.Millisecond)

	editor.mu.Lock()
	defer editor.mu.Unlock()
	assert.Equal(t, []string{`[]`}, editor.texts)
}

func TestNew_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := New(filepath.Join(dir, "missing.json"), &recordingEditor{})
	assert.Error(t, err)

	_, err = New(dir, &recordingEditor{})
	assert.Error(t, err)
}
