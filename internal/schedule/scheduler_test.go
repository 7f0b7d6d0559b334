// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/toolpanel/internal/jsonfmt"
)

// recordingValidator records every text it is asked to validate.
type recordingValidator struct {
	mu    sync.Mutex
	texts []string
}

func (v *recordingValidator) Validate(text string) jsonfmt.Outcome {
	v.mu.Lock()
	v.texts = append(v.texts, text)
	v.mu.Unlock()
	return jsonfmt.NewValidator(nil, jsonfmt.Options{}).Validate(text)
}

func (v *recordingValidator) calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.texts...)
}

func newTestScheduler(t *testing.T) (*Scheduler, *FakeClock, *recordingValidator, *[]Result) {
	t.Helper()

	clock := NewFakeClock(time.Unix(0, 0))
	v := &recordingValidator{}
	var results []Result
	s := New(v, WithClock(clock), WithResultHandler(func(r Result) {
		results = append(results, r)
	}))
	t.Cleanup(s.Close)
	return s, clock, v, &results
}

func TestScheduler_BurstCollapsesToOneRun(t *testing.T) {
	s, clock, v, results := newTestScheduler(t)

	for i, text := range []string{`{`, `{"a"`, `{"a":`, `{"a":1}`} {
		if i > 0 {
			clock.Advance(50 * time.Millisecond)
		}
		s.Edit(text)
	}
	assert.Equal(t, StatePending, s.State())
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(299 * time.Millisecond)
	assert.Empty(t, v.calls())

	clock.Advance(time.Millisecond)

	assert.Equal(t, []string{`{"a":1}`}, v.calls())
	require.Len(t, *results, 1)
	assert.True(t, (*results)[0].Outcome.Valid())
	assert.Equal(t, TriggerDebounce, (*results)[0].Trigger)
	assert.Equal(t, time.Unix(0, 0).Add(450*time.Millisecond), (*results)[0].At)
	assert.Equal(t, StateIdle, s.State())

	stats := s.Stats()
	assert.Equal(t, int64(4), stats.Edits)
	assert.Equal(t, int64(3), stats.Superseded)
	assert.Equal(t, int64(1), stats.Runs)
}

func TestScheduler_SpacedEditsRunTwice(t *testing.T) {
	s, clock, v, _ := newTestScheduler(t)

	s.Edit(`[1]`)
	clock.Advance(400 * time.Millisecond)
	s.Edit(`[2]`)
	clock.Advance(400 * time.Millisecond)

	assert.Equal(t, []string{`[1]`, `[2]`}, v.calls())
}

func TestScheduler_BlankSkipsValidator(t *testing.T) {
	s, clock, v, results := newTestScheduler(t)

	s.Edit("   \n\t")
	clock.Advance(DefaultDelay)

	assert.Empty(t, v.calls())
	require.Len(t, *results, 1)
	assert.Equal(t, jsonfmt.StatusEmpty, (*results)[0].Outcome.Status)

	res := s.ValidateNow()
	assert.Equal(t, jsonfmt.StatusEmpty, res.Outcome.Status)
	assert.Empty(t, v.calls())
}

func TestScheduler_ValidateNowKeepsPendingTimer(t *testing.T) {
	s, clock, v, results := newTestScheduler(t)

	s.Edit(`{"a": }`)
	res := s.ValidateNow()

	assert.Equal(t, TriggerExplicit, res.Trigger)
	assert.Equal(t, jsonfmt.StatusInvalid, res.Outcome.Status)
	assert.Equal(t, StatePending, s.State())

	clock.Advance(DefaultDelay)

	assert.Len(t, v.calls(), 2)
	require.Len(t, *results, 2)
	assert.Equal(t, TriggerDebounce, (*results)[1].Trigger)
}

func TestScheduler_CustomDelay(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	v := &recordingValidator{}
	s := New(v, WithClock(clock), WithDelay(time.Second))
	defer s.Close()

	s.Edit(`1`)
	clock.Advance(DefaultDelay)
	assert.Empty(t, v.calls())

	clock.Advance(time.Second)
	assert.Len(t, v.calls(), 1)
}

func TestScheduler_CloseCancelsPending(t *testing.T) {
	s, clock, v, _ := newTestScheduler(t)

	s.Edit(`{}`)
	s.Close()
	clock.Advance(time.Second)
	s.Edit(`[]`)
	clock.Advance(time.Second)

	assert.Empty(t, v.calls())
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, `{}`, s.Text())
}

func TestScheduler_StaleTimerIsIgnored(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	v := &recordingValidator{}
	s := New(v, WithClock(clock))
	defer s.Close()

	// A callback that already started running observes a newer generation.
	s.Edit(`1`)
	s.mu.Lock()
	stale := s.gen
	s.mu.Unlock()
	s.Edit(`2`)

	s.fire(stale)
	assert.Empty(t, v.calls())

	clock.Advance(DefaultDelay)
	assert.Equal(t, []string{`2`}, v.calls())
}

func TestScheduler_RealClock(t *testing.T) {
	v := &recordingValidator{}
	done := make(chan Result, 1)
	s := New(v, WithDelay(10*time.Millisecond), WithResultHandler(func(r Result) {
		done <- r
	}))
	defer s.Close()

	s.Edit(`{"ok": true}`)

	select {
	case r := <-done:
		assert.True(t, r.Outcome.Valid())
	case <-time.After(2 * time.Second):
		t.Fatal("debounced validation never ran")
	}
}

func TestFakeClock_StopReportsWhetherPrevented(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	fired := 0
	timer := clock.AfterFunc(time.Second, func() { fired++ })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	clock.Advance(2 * time.Second)
	assert.Zero(t, fired)

	timer = clock.AfterFunc(time.Second, func() { fired++ })
	clock.Advance(time.Second)
	assert.Equal(t, 1, fired)
	assert.False(t, timer.Stop())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "pending", StatePending.String())
}
