package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"teamdocs/internal/model"
	"teamdocs/pkg/logging"
)

// FetchFailedMessage is shown when a required step fails.
const FetchFailedMessage = "Failed to fetch team data"

// ErrStaleLoad is returned by a load that was superseded by a newer one or by
// Close.
var ErrStaleLoad = errors.New("workspace load superseded")

// Step names a fetch within a load.
type Step string

const (
	StepTeam      Step = "team"
	StepTasks     Step = "tasks"
	StepDocuments Step = "documents"
)

// LoadError is returned when a required step fails.
type LoadError struct {
	TeamID int
	Step   Step
	Err    error
}

func (e *LoadError) Error() string {
	return FetchFailedMessage
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Status is the lifecycle of the aggregator's data.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Source is the backend as seen by the aggregator.
type Source interface {
	GetTeam(ctx context.Context, teamID int) (*model.Team, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListTeamDocuments(ctx context.Context, teamID int) ([]model.Document, error)
}

// Snapshot is the data of one successful load.
type Snapshot struct {
	Team      *model.Team
	Tasks     []model.Task
	Documents []model.Document
	// DocumentsErr records why the optional document fetch failed, if it did.
	// It is never surfaced to the user.
	DocumentsErr error
	LoadedAt     time.Time
}

// ActiveTasks returns the snapshot's tasks as shown in the task list.
func (s *Snapshot) ActiveTasks(now time.Time) []model.Task {
	if s == nil {
		return nil
	}
	return model.ActiveTasks(s.Tasks, now)
}

// Document looks up a document by id.
func (s *Snapshot) Document(id int) (*model.Document, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Documents {
		if s.Documents[i].ID == id {
			d := s.Documents[i]
			return &d, true
		}
	}
	return nil, false
}

func (s *Snapshot) clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Tasks = append([]model.Task(nil), s.Tasks...)
	c.Documents = append([]model.Document(nil), s.Documents...)
	return &c
}

// Aggregator owns the workspace data for one team view.
type Aggregator struct {
	src Source
	now func() time.Time

	mu         sync.RWMutex
	generation uint64
	status     Status
	snapshot   *Snapshot
	err        error
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock sets the clock used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// NewAggregator creates an Aggregator reading from src.
func NewAggregator(src Source, opts ...Option) *Aggregator {
	a := &Aggregator{src: src, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LoadTeam fetches the workspace for teamID and replaces the current
// snapshot. It returns *LoadError when a required step fails and
// ErrStaleLoad when a newer load or Close superseded it.
func (a *Aggregator) LoadTeam(ctx context.Context, teamID int) (*Snapshot, error) {
	a.mu.Lock()
	a.generation++
	gen := a.generation
	a.status = StatusLoading
	a.snapshot = nil
	a.err = nil
	a.mu.Unlock()

	logging.Debug("Workspace", "Loading team %d (generation %d)", teamID, gen)

	team, err := a.src.GetTeam(ctx, teamID)
	if !a.current(gen) {
		return nil, ErrStaleLoad
	}
	if err != nil {
		return nil, a.fail(gen, &LoadError{TeamID: teamID, Step: StepTeam, Err: err})
	}

	tasks, err := a.src.ListTasks(ctx)
	if !a.current(gen) {
		return nil, ErrStaleLoad
	}
	if err != nil {
		return nil, a.fail(gen, &LoadError{TeamID: teamID, Step: StepTasks, Err: err})
	}

	snap := &Snapshot{
		Team:  team,
		Tasks: model.TasksForTeam(tasks, teamID),
	}

	docs, err := a.src.ListTeamDocuments(ctx, teamID)
	if !a.current(gen) {
		return nil, ErrStaleLoad
	}
	if err != nil {
		logging.Debug("Workspace", "Document fetch for team %d failed, showing none: %v", teamID, err)
		snap.DocumentsErr = err
		docs = nil
	}
	snap.Documents = append([]model.Document{}, docs...)
	snap.LoadedAt = a.now()

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		return nil, ErrStaleLoad
	}
	a.snapshot = snap
	a.status = StatusReady
	logging.Info("Workspace", "Loaded team %d: %d tasks, %d documents", teamID, len(snap.Tasks), len(snap.Documents))
	return snap.clone(), nil
}

func (a *Aggregator) current(gen uint64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return gen == a.generation
}

func (a *Aggregator) fail(gen uint64, loadErr *LoadError) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		return ErrStaleLoad
	}
	a.status = StatusFailed
	a.snapshot = nil
	a.err = loadErr
	logging.Error("Workspace", loadErr.Err, "Failed to fetch %s for team %d", loadErr.Step, loadErr.TeamID)
	return loadErr
}

// Status returns the current lifecycle status.
func (a *Aggregator) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Err returns the error of the last failed load.
func (a *Aggregator) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

// Snapshot returns a copy of the current snapshot, or nil.
func (a *Aggregator) Snapshot() *Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot.clone()
}

// RemoveDocument drops a document from the current snapshot. It reports
// whether the document was present.
func (a *Aggregator) RemoveDocument(id int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.snapshot == nil {
		return false
	}
	docs := a.snapshot.Documents
	for i := range docs {
		if docs[i].ID == id {
			a.snapshot.Documents = append(docs[:i:i], docs[i+1:]...)
			return true
		}
	}
	return false
}

// Close invalidates any in-flight load.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	if a.status == StatusLoading {
		a.status = StatusIdle
	}
}
