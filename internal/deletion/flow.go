// Package deletion implements the confirm-then-delete flow for documents.
package deletion

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"teamdocs/internal/model"
	"teamdocs/pkg/logging"
)

// FailureMessage is shown when the backend rejects a deletion.
const FailureMessage = "Failed to delete document."

var (
	// ErrDeletionActive is returned when a request arrives while another
	// deletion is pending confirmation or running.
	ErrDeletionActive = errors.New("a document deletion is already in progress")

	// ErrNotPermitted is returned when the current user may not delete the
	// target document.
	ErrNotPermitted = errors.New("not permitted to delete this document")

	// ErrNothingToConfirm is returned by Confirm when no deletion is pending.
	ErrNothingToConfirm = errors.New("no deletion awaiting confirmation")
)

// State is the phase of the flow.
type State int

const (
	StateIdle State = iota
	StateConfirmPending
	StateDeleting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConfirmPending:
		return "ConfirmPending"
	case StateDeleting:
		return "Deleting"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Deleter removes a document on the backend.
type Deleter interface {
	DeleteDocument(ctx context.Context, documentID int) error
}

// Collection is the local document list updated after a deletion.
type Collection interface {
	RemoveDocument(id int) bool
}

// FailedError carries the user-facing message and the backend cause.
type FailedError struct {
	DocumentID int
	Err        error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s %v", FailureMessage, e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

// Flow drives one document deletion at a time.
type Flow struct {
	deleter    Deleter
	collection Collection
	allowed    func(*model.Document) bool

	mu     sync.Mutex
	state  State
	target *model.Document
	err    error
}

// Option configures a Flow.
type Option func(*Flow)

// WithPermission installs the check consulted before each deletion.
func WithPermission(allowed func(*model.Document) bool) Option {
	return func(f *Flow) {
		f.allowed = allowed
	}
}

// NewFlow creates an idle Flow.
func NewFlow(deleter Deleter, collection Collection, opts ...Option) *Flow {
	f := &Flow{deleter: deleter, collection: collection}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RequestDelete selects doc and asks for confirmation. From Failed it
// replaces the previous target.
func (f *Flow) RequestDelete(doc *model.Document) error {
	if doc == nil {
		return errors.New("no document selected")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateIdle, StateFailed:
	default:
		return ErrDeletionActive
	}
	if f.allowed != nil && !f.allowed(doc) {
		return ErrNotPermitted
	}
	d := *doc
	f.target = &d
	f.err = nil
	f.state = StateConfirmPending
	return nil
}

// Confirm deletes the target. It is valid from ConfirmPending and, as a
// retry, from Failed. On success the document leaves the collection and the
// flow returns to Idle; on failure it moves to Failed and returns
// *FailedError.
func (f *Flow) Confirm(ctx context.Context) error {
	f.mu.Lock()
	switch f.state {
	case StateConfirmPending, StateFailed:
	case StateDeleting:
		f.mu.Unlock()
		return ErrDeletionActive
	default:
		f.mu.Unlock()
		return ErrNothingToConfirm
	}
	doc := f.target
	if f.allowed != nil && !f.allowed(doc) {
		f.mu.Unlock()
		return ErrNotPermitted
	}
	f.state = StateDeleting
	f.err = nil
	f.mu.Unlock()

	logging.Info("Deletion", "Deleting document %d", doc.ID)
	err := f.deleter.DeleteDocument(ctx, doc.ID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		failed := &FailedError{DocumentID: doc.ID, Err: err}
		f.state = StateFailed
		f.err = failed
		logging.Error("Deletion", err, "Failed to delete document %d", doc.ID)
		return failed
	}

	if f.collection != nil {
		f.collection.RemoveDocument(doc.ID)
	}
	f.state = StateIdle
	f.target = nil
	return nil
}

// Cancel abandons a pending or failed deletion. Cancelling while the request
// is running returns ErrDeletionActive.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateDeleting {
		return ErrDeletionActive
	}
	f.state = StateIdle
	f.target = nil
	f.err = nil
	return nil
}

// State returns the current phase.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Target returns a copy of the selected document, or nil.
func (f *Flow) Target() *model.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.target == nil {
		return nil
	}
	d := *f.target
	return &d
}

// Message returns the user-facing error message in Failed, else "".
func (f *Flow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateFailed {
		return ""
	}
	return FailureMessage
}

// Err returns the last failure.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
