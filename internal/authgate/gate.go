// Package authgate decides whether Drive-backed content may be shown and
// triggers at most one automatic redirect per mount.
package authgate

import (
	"context"
	"errors"
	"sync"
	"time"

	"teamdocs/internal/appstate"
	"teamdocs/internal/redirect"
	"teamdocs/pkg/logging"
)

// DefaultDebounce delays the automatic redirect so short-lived mounts never
// trigger one.
const DefaultDebounce = 300 * time.Millisecond

// ErrNotMounted is returned by Retry on a gate that is not mounted.
var ErrNotMounted = errors.New("auth gate is not mounted")

// State is the gate's externally visible state.
type State int

const (
	StateIdle State = iota
	StatePromptVisible
	StateRedirecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePromptVisible:
		return "PromptVisible"
	case StateRedirecting:
		return "Redirecting"
	case StateConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// RendersContent reports whether wrapped content is shown in this state.
func (s State) RendersContent() bool {
	return s == StateIdle || s == StateConnected
}

// Redirector starts and resets the external login hand-off.
type Redirector interface {
	BeginExternalLogin(ctx context.Context, returnPath string) error
	Reset() error
	InProgress() (bool, error)
}

// Gate is one mounted instance of the auth gate.
type Gate struct {
	store      *appstate.Store
	redirector Redirector
	path       string
	debounce   time.Duration
	onChange   []func(State)

	mu          sync.Mutex
	mounted     bool
	showPrompt  bool
	attempted   bool
	pending     bool
	inFlight    bool
	generation  uint64
	timer       *time.Timer
	state       State
	lastErr     error
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

// Option configures a Gate.
type Option func(*Gate)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(g *Gate) {
		g.debounce = d
	}
}

// WithShowPrompt sets the initial showPrompt input.
func WithShowPrompt(show bool) Option {
	return func(g *Gate) {
		g.showPrompt = show
	}
}

// OnChange registers fn to be called after every state change.
func OnChange(fn func(State)) Option {
	return func(g *Gate) {
		g.onChange = append(g.onChange, fn)
	}
}

// New creates an unmounted gate. currentPath is stored as the return path
// when the gate redirects.
func New(store *appstate.Store, redirector Redirector, currentPath string, opts ...Option) *Gate {
	g := &Gate{
		store:      store,
		redirector: redirector,
		path:       currentPath,
		debounce:   DefaultDebounce,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Mount activates the gate and evaluates it. Each mount starts with a fresh
// attempted flag.
func (g *Gate) Mount(ctx context.Context) State {
	g.mu.Lock()
	if g.mounted {
		g.mu.Unlock()
		return g.State()
	}
	g.generation++
	g.mounted = true
	g.attempted = false
	g.pending = false
	g.lastErr = nil
	g.ctx, g.cancel = context.WithCancel(ctx)
	g.mu.Unlock()

	unsubscribe := g.store.Subscribe(func(appstate.ConnectionStatus) {
		g.Evaluate()
	})

	g.mu.Lock()
	g.unsubscribe = unsubscribe
	g.mu.Unlock()

	return g.Evaluate()
}

// Unmount tears the gate down. A scheduled redirect is cancelled, and one
// whose timer already fired will see the new generation and do nothing.
func (g *Gate) Unmount() {
	g.mu.Lock()
	if !g.mounted {
		g.mu.Unlock()
		return
	}
	g.mounted = false
	g.generation++
	g.pending = false
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	if g.cancel != nil {
		g.cancel()
	}
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.state = StateIdle
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	logging.Debug("AuthGate", "Gate unmounted")
}

// SetShowPrompt changes the showPrompt input and re-evaluates.
func (g *Gate) SetShowPrompt(show bool) State {
	g.mu.Lock()
	g.showPrompt = show
	g.mu.Unlock()
	return g.Evaluate()
}

// State returns the last evaluated state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// LastError returns the error of the most recent redirect attempt.
func (g *Gate) LastError() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// Evaluate recomputes the state from the current inputs, scheduling the
// automatic redirect when the conditions hold.
func (g *Gate) Evaluate() State {
	g.mu.Lock()
	prev := g.state
	next := g.evaluateLocked()
	g.mu.Unlock()

	if next != prev {
		logging.Debug("AuthGate", "State %s -> %s", prev, next)
		g.notify(next)
	}
	return next
}

func (g *Gate) evaluateLocked() State {
	switch {
	case !g.mounted:
		g.state = StateIdle
	case g.store.Connected():
		g.state = StateConnected
	case !g.showPrompt:
		g.state = StateIdle
	case g.pending:
		g.state = StateRedirecting
	case !g.attempted && !g.flagSet():
		g.attempted = true
		g.pending = true
		gen := g.generation
		g.timer = time.AfterFunc(g.debounce, func() { g.dispatch(gen) })
		g.state = StateRedirecting
	default:
		g.state = StatePromptVisible
	}
	return g.state
}

// flagSet reports the persisted in-progress flag. Read errors count as set
// so a broken store never causes a redirect loop.
func (g *Gate) flagSet() bool {
	busy, err := g.redirector.InProgress()
	if err != nil {
		logging.Warn("AuthGate", "Could not read redirect flag: %v", err)
		return true
	}
	return busy
}

func (g *Gate) dispatch(gen uint64) {
	g.mu.Lock()
	if gen != g.generation || !g.mounted {
		g.mu.Unlock()
		return
	}
	g.timer = nil
	if g.store.Connected() {
		g.pending = false
		g.mu.Unlock()
		g.Evaluate()
		return
	}
	ctx := g.ctx
	g.inFlight = true
	g.mu.Unlock()

	logging.Info("AuthGate", "Starting automatic Google Drive redirect")
	err := g.redirector.BeginExternalLogin(ctx, g.path)
	g.finish(gen, err)
}

// Retry clears the in-progress flag and starts a redirect immediately,
// bypassing the debounce. It does nothing once Drive is connected, and
// returns redirect.ErrRedirectInProgress while another hand-off from this
// gate has not returned yet.
func (g *Gate) Retry(ctx context.Context) error {
	g.mu.Lock()
	if !g.mounted {
		g.mu.Unlock()
		return ErrNotMounted
	}
	if g.store.Connected() {
		g.mu.Unlock()
		logging.Debug("AuthGate", "Already connected, ignoring retry")
		g.Evaluate()
		return nil
	}
	if g.inFlight {
		g.mu.Unlock()
		return redirect.ErrRedirectInProgress
	}
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.generation++
	gen := g.generation
	if err := g.redirector.Reset(); err != nil {
		logging.Warn("AuthGate", "Could not clear redirect flag: %v", err)
	}
	g.attempted = true
	g.pending = true
	g.inFlight = true
	g.mu.Unlock()
	g.Evaluate()

	logging.Info("AuthGate", "Retrying Google Drive redirect")
	err := g.redirector.BeginExternalLogin(ctx, g.path)
	g.finish(gen, err)
	return err
}

func (g *Gate) finish(gen uint64, err error) {
	g.mu.Lock()
	g.inFlight = false
	if gen != g.generation {
		g.mu.Unlock()
		return
	}
	g.pending = false
	g.lastErr = err
	g.mu.Unlock()
	g.Evaluate()
}

func (g *Gate) notify(state State) {
	for _, fn := range g.onChange {
		fn(state)
	}
}
