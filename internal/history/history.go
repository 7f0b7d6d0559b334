// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultMaxEntries is the retention limit when none is configured.
const DefaultMaxEntries = 500

var (
	// ErrNotFound is returned when no run has the requested ID.
	ErrNotFound = errors.New("history entry not found")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("history store is closed")
)

// =============================================================================
// TYPES
// =============================================================================

// Kind is the tool that produced a run.
type Kind string

const (
	KindValidate Kind = "validate"
	KindFormat   Kind = "format"
	KindCompress Kind = "compress"
	KindDiff     Kind = "diff"
	KindLocate   Kind = "locate"
	KindText     Kind = "text"
	KindBase64   Kind = "base64"
	KindTime     Kind = "time"
)

// Entry is one recorded run. Only summaries are kept, never input text.
type Entry struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Source    string        `json:"source,omitempty"` // cli, panel, http, shell
	Status    string        `json:"status"`
	Summary   string        `json:"summary,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store persists run summaries in SQLite.
type Store struct {
	mu         sync.Mutex
	db         *sql.DB
	maxEntries int
	now        func() time.Time
	logger     zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMaxEntries sets how many runs are retained.
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// withNow overrides the clock in tests.
func withNow(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// =============================================================================
// OPEN / CLOSE
// =============================================================================

// Open opens or creates the history database at path.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &Store{
		db:         db,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Record stores a run, filling in ID and CreatedAt, and prunes the oldest
// runs beyond the retention limit.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return Entry{}, err
	}

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	_, err = db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, source, status, summary, duration_us, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), e.Source, e.Status, e.Summary,
		e.Duration.Microseconds(), e.CreatedAt.UnixNano())
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record run: %w", err)
	}

	res, err := db.ExecContext(ctx, pruneQuery, s.maxEntries)
	if err != nil {
		return e, fmt.Errorf("failed to prune history: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Debug().Int64("pruned", n).Msg("history pruned")
	}
	return e, nil
}

// List returns up to limit runs, newest first. A zero limit returns all
// runs; an empty kind matches every kind.
func (s *Store) List(ctx context.Context, kind Kind, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, kind, source, status, summary, duration_us, created_at
		 FROM runs WHERE (? = '' OR kind = ?)
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		string(kind), string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return Entry{}, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, kind, source, status, summary, duration_us, created_at
		 FROM runs WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// Count returns the number of stored runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var n int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}

// Clear deletes every run and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e          Entry
		kind       string
		durationUs int64
		createdAt  int64
	)
	if err := sc.Scan(&e.ID, &kind, &e.Source, &e.Status, &e.Summary, &durationUs, &createdAt); err != nil {
		return Entry{}, err
	}
	e.Kind = Kind(kind)
	e.Duration = time.Duration(durationUs) * time.Microsecond
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	return e, nil
}
