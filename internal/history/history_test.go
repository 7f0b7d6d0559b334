// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{withNow(steppingClock())}, opts...)
	s, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e, err := s.Record(ctx, Entry{
		Kind:     KindValidate,
		Source:   "cli",
		Status:   "invalid",
		Summary:  "line 2, column 9: invalid character",
		Duration: 1500 * time.Microsecond,
	})
	require.NoError(t, err)

	_, err = uuid.Parse(e.ID)
	assert.NoError(t, err)
	assert.False(t, e.CreatedAt.IsZero())

	got, err := s.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_NewestFirstAndFiltered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, k := range []Kind{KindDiff, KindValidate, KindDiff} {
		_, err := s.Record(ctx, Entry{Kind: k, Status: "ok"})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))

	diffs, err := s.List(ctx, KindDiff, 0)
	require.NoError(t, err)
	assert.Len(t, diffs, 2)

	limited, err := s.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, all[0].ID, limited[0].ID)
}

func TestRecord_PrunesOldest(t *testing.T) {
	s := openTestStore(t, WithMaxEntries(3))
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		e, err := s.Record(ctx, Entry{Kind: KindText, Status: "ok"})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = s.Get(ctx, ids[0])
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, ids[4])
	assert.NoError(t, err)
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.Record(ctx, Entry{Kind: KindBase64, Status: "ok"})
		require.NoError(t, err)
	}

	removed, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClosedStore(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Record(context.Background(), Entry{Kind: KindTime})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.List(context.Background(), "", 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	e, err := s.Record(ctx, Entry{Kind: KindFormat, Status: "valid"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, KindFormat, got.Kind)
}
