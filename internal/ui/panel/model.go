// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"context"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/toolpanel/internal/codec"
	"github.com/jeranaias/toolpanel/internal/config"
	"github.com/jeranaias/toolpanel/internal/history"
	"github.com/jeranaias/toolpanel/internal/jsonfmt"
	"github.com/jeranaias/toolpanel/internal/schedule"
	"github.com/jeranaias/toolpanel/internal/timeconv"
	"github.com/jeranaias/toolpanel/internal/ui/components"
	"github.com/jeranaias/toolpanel/internal/ui/styles"
)

// =============================================================================
// TABS
// =============================================================================

// Tab identifies one tool page.
type Tab int

const (
	TabJSON Tab = iota
	TabDiff
	TabText
	TabBase64
	TabTime

	tabCount = int(TabTime) + 1
)

var tabNames = [...]string{"JSON", "Diff", "Text", "Base64", "Time"}

func (t Tab) String() string {
	if int(t) < len(tabNames) {
		return tabNames[t]
	}
	return "?"
}

// Time tab modes.
type timeMode int

const (
	timeToDate timeMode = iota
	timeToTimestamp
	timeNow

	timeModeCount = int(timeNow) + 1
)

var timeModeNames = [...]string{"timestamp → date", "date → timestamp", "now"}

// Recorder stores run summaries. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

// resultBuffer bounds how many undelivered validation results may queue
// before the scheduler's timer goroutine waits on Update.
const resultBuffer = 8

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the panel. Like other tea models it is
// passed by value; everything shared across copies sits behind pointers.
type Model struct {
	theme  *styles.Theme
	cfg    *config.Config
	keys   KeyMap
	help   help.Model
	logger zerolog.Logger

	tab      Tab
	width    int
	height   int
	showHelp bool
	helpView *components.HelpView
	notice   string
	noticeOK bool

	// JSON tab
	jsonInput   textarea.Model
	validator   *jsonfmt.Validator
	scheduler   *schedule.Scheduler
	clock       schedule.Clock
	results     chan schedule.Result
	done        chan struct{}
	closeOnce   *sync.Once
	outcome     jsonfmt.Outcome
	jsonView    *components.JSONView
	jsonPreview viewport.Model

	// Diff tab
	left        textarea.Model
	right       textarea.Model
	rightFocus  bool
	diffView    *components.DiffView
	diffPort    viewport.Model
	showingDiff bool

	// Text tab
	textInput  textarea.Model
	textOp     int
	textOutput string

	// Base64 tab
	b64Input   textarea.Model
	b64Decode  bool
	b64Variant codec.Variant
	b64Output  string

	// Time tab
	timeInput  textarea.Model
	timeMode   timeMode
	timeUnit   timeconv.Unit
	timeOutput string

	recorder  Recorder
	clipboard func(string) error
}

// Option configures a Model.
type Option func(*Model)

// WithClock sets the clock driving the validation debounce.
func WithClock(c schedule.Clock) Option {
	return func(m *Model) {
		m.clock = c
	}
}

// WithRecorder records explicit actions (validate, format, compare, ...) to
// run history.
func WithRecorder(r Recorder) Option {
	return func(m *Model) {
		m.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		m.clipboard = write
	}
}

// New creates the panel model. Close must be called once the program exits
// to stop the validation scheduler.
func New(theme *styles.Theme, cfg *config.Config, opts ...Option) Model {
	if cfg == nil {
		cfg = config.Default()
	}

	m := Model{
		theme:     theme,
		cfg:       cfg,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		logger:    zerolog.Nop(),
		clock:     schedule.RealClock{},
		clipboard: clipboard.WriteAll,
		results:   make(chan schedule.Result, resultBuffer),
		done:      make(chan struct{}),
		closeOnce: &sync.Once{},
		timeUnit:  timeconv.Seconds,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.validator = jsonfmt.NewValidator(nil, jsonfmt.Options{
		Indent:       cfg.IndentString(),
		AutoWrap:     cfg.JSON.AutoWrap,
		RemoveEscape: cfg.JSON.RemoveEscape,
	})
	results, done := m.results, m.done
	m.scheduler = schedule.New(m.validator,
		schedule.WithClock(m.clock),
		schedule.WithDelay(time.Duration(cfg.JSON.DebounceMs)*time.Millisecond),
		schedule.WithLogger(m.logger),
		schedule.WithResultHandler(func(r schedule.Result) {
			select {
			case results <- r:
			case <-done:
			}
		}),
	)

	m.jsonInput = newEditor(cfg, "Paste or type JSON…")
	m.left = newEditor(cfg, "Left text")
	m.right = newEditor(cfg, "Right text")
	m.textInput = newEditor(cfg, "Text to transform")
	m.b64Input = newEditor(cfg, "Text to encode or base64 to decode")
	m.timeInput = newEditor(cfg, "Timestamp or date")
	m.timeInput.ShowLineNumbers = false

	m.jsonView = components.NewJSONView(theme)
	m.jsonView.SetHighlight(cfg.UI.Highlight)
	m.jsonPreview = viewport.New(40, 10)

	m.diffView = components.NewDiffView(theme)
	m.diffView.SetLineNumbers(cfg.UI.ShowLineNumbers)
	m.diffView.SetInline(cfg.Diff.Inline)
	m.diffPort = viewport.New(80, 10)

	m.helpView = components.NewHelpView(theme, m.keys.helpSections()...)

	m.jsonInput.Focus()
	m.resize(80, 24)
	return m
}

func newEditor(cfg *config.Config, placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.Prompt = ""
	ta.ShowLineNumbers = cfg.UI.ShowLineNumbers
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Blur()
	return ta
}

// Close stops the scheduler and releases a pending result wait. It is safe to
// call more than once.
func (m Model) Close() {
	m.closeOnce.Do(func() {
		m.scheduler.Close()
		close(m.done)
	})
}

// Tab returns the active tab.
func (m Model) Tab() Tab {
	return m.tab
}

// Outcome returns the latest JSON outcome shown.
func (m Model) Outcome() jsonfmt.Outcome {
	return m.outcome
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the validation result listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForResult(m.results, m.done))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ValidationMsg:
		m.applyOutcome(msg.Result.Text, msg.Result.Outcome)
		return m, waitForResult(m.results, m.done)

	case CopiedMsg:
		if msg.Err != nil {
			m.setNotice("copy failed: "+msg.Err.Error(), false)
		} else {
			m.setNotice(plural(msg.Chars, "character")+" copied", true)
		}
		return m, nil
	}

	// Cursor blink and other editor-internal messages.
	var cmd tea.Cmd
	if ta := m.focusedEditor(); ta != nil {
		*ta, cmd = ta.Update(msg)
	}
	return m, cmd
}

// applyOutcome shows a validation outcome for text and scrolls the preview to
// the marked line.
func (m *Model) applyOutcome(text string, outcome jsonfmt.Outcome) {
	m.outcome = outcome
	m.jsonView.SetContent(text, outcome)
	m.jsonPreview.SetContent(m.jsonView.Render())
	if row := m.jsonView.ErrorRow(); row >= 0 {
		m.jsonPreview.SetYOffset(max(row-m.jsonPreview.Height/2, 0))
	}
}

func (m *Model) setNotice(text string, ok bool) {
	m.notice = text
	m.noticeOK = ok
}

// focusedEditor returns the editor receiving keystrokes, or nil when the
// active page shows results only.
func (m *Model) focusedEditor() *textarea.Model {
	switch m.tab {
	case TabJSON:
		return &m.jsonInput
	case TabDiff:
		if m.showingDiff {
			return nil
		}
		if m.rightFocus {
			return &m.right
		}
		return &m.left
	case TabText:
		return &m.textInput
	case TabBase64:
		return &m.b64Input
	case TabTime:
		return &m.timeInput
	}
	return nil
}

// switchTab moves focus to the editor of the given tab.
func (m *Model) switchTab(t Tab) {
	for _, ta := range []*textarea.Model{&m.jsonInput, &m.left, &m.right, &m.textInput, &m.b64Input, &m.timeInput} {
		ta.Blur()
	}
	m.tab = t
	m.notice = ""
	if ta := m.focusedEditor(); ta != nil {
		ta.Focus()
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

// chromeRows covers the tab bar, status line and footer.
const chromeRows = 3

// editorFrame is the border added around every editor.
const editorFrame = 2

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)
	m.help.Width = width

	body := max(height-chromeRows, 6)
	wide := m.theme.GetLayoutMode() != styles.LayoutNarrow

	// JSON: editor beside the preview, or stacked when narrow.
	if wide {
		half := width / 2
		m.jsonInput.SetWidth(half - editorFrame)
		m.jsonInput.SetHeight(body - editorFrame)
		m.jsonPreview.Width = width - half
		m.jsonPreview.Height = body
	} else {
		m.jsonInput.SetWidth(width - editorFrame)
		m.jsonInput.SetHeight(body/2 - editorFrame)
		m.jsonPreview.Width = width
		m.jsonPreview.Height = body - body/2
	}

	// Diff: two editors side by side; results fill the body.
	half := width / 2
	for _, ta := range []*textarea.Model{&m.left, &m.right} {
		ta.SetWidth(half - editorFrame)
		ta.SetHeight(body - editorFrame)
	}
	m.diffView.SetWidth(width)
	m.diffPort.Width = width
	m.diffPort.Height = body
	if m.diffView.Result() != nil {
		m.diffPort.SetContent(m.diffView.Render())
	}

	// Single-input tools: input on top, output below.
	for _, ta := range []*textarea.Model{&m.textInput, &m.b64Input} {
		ta.SetWidth(width - editorFrame)
		ta.SetHeight(body/2 - editorFrame)
	}
	m.timeInput.SetWidth(width - editorFrame)
	m.timeInput.SetHeight(1)

	if m.jsonView != nil {
		m.jsonPreview.SetContent(m.jsonView.Render())
	}
}

// =============================================================================
// CLIPBOARD AND HISTORY
// =============================================================================

// copyCmd writes text to the clipboard off the update loop.
func (m Model) copyCmd(text string) tea.Cmd {
	write := m.clipboard
	return func() tea.Msg {
		return CopiedMsg{Chars: len([]rune(text)), Err: write(text)}
	}
}

// recordCmd stores a run summary off the update loop. It returns nil when
// history is disabled.
func (m Model) recordCmd(kind history.Kind, status, summary string, took time.Duration) tea.Cmd {
	if m.recorder == nil {
		return nil
	}
	rec, logger := m.recorder, m.logger
	entry := history.Entry{
		Kind:     kind,
		Source:   "panel",
		Status:   status,
		Summary:  summary,
		Duration: took,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := rec.Record(ctx, entry); err != nil {
			logger.Warn().Err(err).Str("kind", string(kind)).Msg("failed to record history")
		}
		return nil
	}
}
