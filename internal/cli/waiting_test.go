package cli

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
)

func TestWaiter_Quiet(t *testing.T) {
	var buf bytes.Buffer
	w := NewWaiter(&buf, true)
	w.Start("Waiting")
	w.Update("Still waiting")
	w.Succeed("done")
	assert.Empty(t, buf.String())
}

func TestWaiter_FinalMessageWithoutStart(t *testing.T) {
	text.DisableColors()
	t.Cleanup(text.EnableColors)

	var buf bytes.Buffer
	w := NewWaiter(&buf, false)
	w.Fail("Failed to connect")
	assert.Equal(t, "✗ Failed to connect\n", buf.String())
}
