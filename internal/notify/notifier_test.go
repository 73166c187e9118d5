package notify

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
)

func TestConsoleNotifier_Plain(t *testing.T) {
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf, false)

	n.Error("Failed to connect to Google Drive. Please try again.")
	n.Info("Opening browser")

	assert.Equal(t, "✗ Failed to connect to Google Drive. Please try again.\n• Opening browser\n", buf.String())
}

func TestConsoleNotifier_Colored(t *testing.T) {
	text.EnableColors()
	var buf bytes.Buffer
	NewConsoleNotifier(&buf, true).Error("boom")
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Info("a")
	r.Error("b")
	assert.Equal(t, []string{"b"}, r.Errors())
	assert.Len(t, r.All(), 2)
}
