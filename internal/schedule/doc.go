// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package schedule rate-limits validation of a text buffer while it is being
// edited.
//
// A Scheduler holds at most one armed timer. Each Edit cancels it and arms a
// new one (single-flight by replacement); when the quiet period elapses the
// buffer is validated as it is at that instant. ValidateNow runs immediately
// and leaves any pending timer alone.
//
// # Key Types
//
//   - Scheduler: The debounce state machine (Idle, Pending)
//   - Clock: Timer source; RealClock in production, FakeClock in tests
//   - Result: Outcome of one run and what triggered it
//
// # Usage
//
//	s := schedule.New(validator, schedule.WithResultHandler(func(r schedule.Result) {
//	    fmt.Println(r.Outcome)
//	}))
//	defer s.Close()
//	s.Edit(text)
package schedule
