// Package notify delivers short user-facing notifications, the terminal
// counterpart of a toast or alert.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Notifier shows a message to the user.
type Notifier interface {
	Error(msg string)
	Info(msg string)
}

// ConsoleNotifier writes notifications to a terminal stream.
type ConsoleNotifier struct {
	mu     sync.Mutex
	out    io.Writer
	colors bool
}

// NewConsoleNotifier writes to out, coloured when colors is true.
func NewConsoleNotifier(out io.Writer, colors bool) *ConsoleNotifier {
	return &ConsoleNotifier{out: out, colors: colors}
}

func (n *ConsoleNotifier) Error(msg string) {
	n.write("✗ ", msg, text.Colors{text.FgRed, text.Bold})
}

func (n *ConsoleNotifier) Info(msg string) {
	n.write("• ", msg, text.Colors{text.FgCyan})
}

func (n *ConsoleNotifier) write(prefix, msg string, colors text.Colors) {
	n.mu.Lock()
	defer n.mu.Unlock()
	line := prefix + msg
	if n.colors {
		line = colors.Sprint(line)
	}
	fmt.Fprintln(n.out, line)
}

// Notification is a recorded message.
type Notification struct {
	Level   string
	Message string
}

// Recorder keeps notifications in memory for assertions.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Error(msg string) { r.add("error", msg) }
func (r *Recorder) Info(msg string)  { r.add("info", msg) }

func (r *Recorder) add(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Level: level, Message: msg})
}

// Errors returns the recorded error messages in order.
func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.items {
		if n.Level == "error" {
			out = append(out, n.Message)
		}
	}
	return out
}

// All returns every recorded notification.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}
