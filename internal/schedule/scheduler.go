// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package schedule

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/toolpanel/internal/jsonfmt"
)

// DefaultDelay is the quiet period between the last edit and validation.
const DefaultDelay = 300 * time.Millisecond

// =============================================================================
// TYPES
// =============================================================================

// State is the scheduler's debounce state.
type State int

const (
	// StateIdle means no validation is scheduled
	StateIdle State = iota
	// StatePending means exactly one timer is armed
	StatePending
)

// String returns the string representation of a state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	default:
		return "unknown"
	}
}

// Trigger records what caused a validation run.
type Trigger int

const (
	// TriggerDebounce is a run fired by the quiet-period timer
	TriggerDebounce Trigger = iota
	// TriggerExplicit is a run requested through ValidateNow
	TriggerExplicit
)

// Validator validates one buffer snapshot.
type Validator interface {
	Validate(text string) jsonfmt.Outcome
}

// Result is delivered after every validation run.
type Result struct {
	Outcome jsonfmt.Outcome
	Text    string
	Trigger Trigger
	At      time.Time
}

// Stats holds scheduler counters.
type Stats struct {
	Edits      int64 `json:"edits"`
	Runs       int64 `json:"runs"`
	Superseded int64 `json:"superseded"`
}

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler debounces edits to one text buffer into validation runs. Every
// edit cancels the pending timer and arms a fresh one, so only the latest
// edit's timer can fire. The fired run reads the buffer as of the fire
// instant.
type Scheduler struct {
	mu sync.Mutex

	validator Validator
	clock     Clock
	delay     time.Duration
	onResult  func(Result)
	logger    zerolog.Logger

	text   string
	state  State
	timer  Timer
	gen    uint64 // bumped on every arm; a stale timer sees a different value
	closed bool
	stats  Stats
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the timer source.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDelay sets the quiet period.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithResultHandler sets the callback receiving every run's result. It is
// called without the scheduler lock held.
func WithResultHandler(f func(Result)) Option {
	return func(s *Scheduler) {
		s.onResult = f
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// New creates a scheduler bound to an empty buffer. A nil validator uses
// jsonfmt defaults.
func New(v Validator, opts ...Option) *Scheduler {
	if v == nil {
		v = jsonfmt.NewValidator(nil, jsonfmt.Options{})
	}
	s := &Scheduler{
		validator: v,
		clock:     RealClock{},
		delay:     DefaultDelay,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Edit replaces the buffer and re-arms the debounce timer.
func (s *Scheduler) Edit(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.text = text
	s.stats.Edits++
	if s.timer != nil {
		if s.timer.Stop() {
			s.stats.Superseded++
		}
	}

	s.gen++
	gen := s.gen
	s.state = StatePending
	s.timer = s.clock.AfterFunc(s.delay, func() { s.fire(gen) })
}

// ValidateNow validates the current buffer synchronously. A pending timer is
// left armed and will still fire.
func (s *Scheduler) ValidateNow() Result {
	s.mu.Lock()
	text := s.text
	s.mu.Unlock()

	return s.run(text, TriggerExplicit)
}

// fire runs the validation for timer generation gen unless it was replaced.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state = StateIdle
	s.timer = nil
	text := s.text
	s.mu.Unlock()

	s.run(text, TriggerDebounce)
}

func (s *Scheduler) run(text string, trigger Trigger) Result {
	var outcome jsonfmt.Outcome
	if jsonfmt.IsBlank(text) {
		outcome = jsonfmt.Outcome{Status: jsonfmt.StatusEmpty}
	} else {
		outcome = s.validator.Validate(text)
	}

	s.mu.Lock()
	s.stats.Runs++
	handler := s.onResult
	s.mu.Unlock()

	res := Result{Outcome: outcome, Text: text, Trigger: trigger, At: s.clock.Now()}
	s.logger.Debug().
		Str("status", outcome.Status.String()).
		Bool("explicit", trigger == TriggerExplicit).
		Int("bytes", len(text)).
		Msg("validation run")

	if handler != nil {
		handler(res)
	}
	return res
}

// State returns the debounce state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Text returns the current buffer.
func (s *Scheduler) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close cancels the pending timer. Later edits are ignored.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = StateIdle
	s.closed = true
}
