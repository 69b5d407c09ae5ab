// Package engine coordinates the local note store, the pending
// operation log, and the remote adapter. It owns the sync state
// machine: local mutations apply to the store immediately and
// unconditionally, sync cycles (push-drain then pull-merge) run one at
// a time, and conflicts resolve by last-writer-wins on UpdatedAt.
package engine

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marcus/qn/internal/models"
	"github.com/marcus/qn/internal/netmon"
	"github.com/marcus/qn/internal/remote"
	"github.com/marcus/qn/internal/store"
)

// State is the orchestrator's current phase.
type State int32

const (
	StateIdle State = iota
	StatePushing
	StatePulling
	StateMerging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePushing:
		return "pushing"
	case StatePulling:
		return "pulling"
	case StateMerging:
		return "merging"
	}
	return "unknown"
}

// NoticeFunc receives best-effort transient condition notices for the
// UI layer. It must not block.
type NoticeFunc func(format string, args ...any)

// Engine is the sync orchestrator. Construct one per store at startup
// and pass it to the UI layer; there is no package-level instance.
type Engine struct {
	store   *store.Store
	adapter remote.Adapter // nil means pure local mode
	monitor *netmon.Monitor

	now    func() int64          // Unix millis
	newID  func() (string, error)
	notice NoticeFunc

	state atomic.Int32

	// Single-flight cycle guard: at most one cycle in flight, and at
	// most one further cycle queued behind it.
	cycleMu sync.Mutex
	running bool
	queued  bool

	triggers chan struct{}

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's clock (Unix milliseconds).
func WithClock(now func() int64) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides note ID generation.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithNotice sets the callback for transient sync notices.
func WithNotice(fn NoticeFunc) Option {
	return func(e *Engine) { e.notice = fn }
}

// New creates an Engine. adapter may be nil for pure local mode: all
// mutations then stop at the store and nothing is queued or pushed.
func New(s *store.Store, adapter remote.Adapter, monitor *netmon.Monitor, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		adapter:  adapter,
		monitor:  monitor,
		now:      func() int64 { return time.Now().UnixMilli() },
		newID:    newNoteID,
		triggers: make(chan struct{}, 1),
		subs:     make(map[int]func()),
	}
	e.notice = func(format string, args ...any) {
		slog.Warn(fmt.Sprintf(format, args...))
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the orchestrator's current phase.
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// Configured reports whether a remote adapter is wired in.
func (e *Engine) Configured() bool {
	return e.adapter != nil
}

// GetAllNotes returns the local note set, newest creation first.
func (e *Engine) GetAllNotes() ([]models.NoteRecord, error) {
	return e.store.GetAllNotes()
}

// GetNote returns one note by id, or nil when absent.
func (e *Engine) GetNote(id string) (*models.NoteRecord, error) {
	return e.store.GetNote(id)
}

// PendingOps returns the number of queued operations.
func (e *Engine) PendingOps() (int64, error) {
	return e.store.CountPendingOps()
}

// Subscribe registers a callback invoked after the local note set
// changes (local mutation or remote merge). Returns an unsubscribe
// function. Callbacks run on the mutating goroutine and must be quick.
func (e *Engine) Subscribe(fn func()) func() {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subMu.Unlock()
	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Engine) notifyChanged() {
	e.subMu.Lock()
	fns := make([]func(), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

const noteIDPrefix = "n-"

// newNoteID generates a local note ID: prefix plus 8 hex characters.
// IDs are assigned locally so offline notes are addressable before any
// network round trip.
func newNoteID() (string, error) {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return noteIDPrefix + hex.EncodeToString(bytes), nil
}
