package cli

import (
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Waiter is the waiting indicator shown while a redirect is pending.
type Waiter struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	quiet   bool
	out     io.Writer
}

// NewWaiter creates a Waiter writing to out. A quiet Waiter prints nothing.
func NewWaiter(out io.Writer, quiet bool) *Waiter {
	return &Waiter{
		spinner: spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out)),
		quiet:   quiet,
		out:     out,
	}
}

// Start shows the spinner with msg.
func (w *Waiter) Start(msg string) {
	if w.quiet {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.spinner.Suffix = " " + msg
	if !w.spinner.Active() {
		w.spinner.Start()
	}
}

// Update replaces the message of a running spinner.
func (w *Waiter) Update(msg string) {
	if w.quiet {
		return
	}
	w.spinner.Lock()
	w.spinner.Suffix = " " + msg
	w.spinner.Unlock()
}

// Succeed stops the spinner with a green final line.
func (w *Waiter) Succeed(msg string) {
	w.stop(text.FgGreen.Sprint("✓ "+msg) + "\n")
}

// Fail stops the spinner with a red final line.
func (w *Waiter) Fail(msg string) {
	w.stop(text.FgRed.Sprint("✗ "+msg) + "\n")
}

// Stop stops the spinner without a final line.
func (w *Waiter) Stop() {
	w.stop("")
}

func (w *Waiter) stop(final string) {
	if w.quiet {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.spinner.Active() {
		if final != "" {
			_, _ = io.WriteString(w.out, final)
		}
		return
	}
	w.spinner.FinalMSG = final
	w.spinner.Stop()
}
