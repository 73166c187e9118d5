package cli

import (
	"errors"
	"io"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	lines   []string
	err     error
	prompts []string
	closed  bool
}

func (r *scriptedReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		if r.err != nil {
			return "", r.err
		}
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) SetPrompt(p string) { r.prompts = append(r.prompts, p) }

func (r *scriptedReader) Close() error {
	r.closed = true
	return nil
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y", true},
		{" YES ", true},
		{"n", false},
		{"", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		p := NewPrompterWithReader(&scriptedReader{lines: []string{tt.input}})
		got, err := p.Confirm("Delete?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestPrompter_ConfirmShowsQuestion(t *testing.T) {
	r := &scriptedReader{lines: []string{"y"}}
	_, err := NewPrompterWithReader(r).Confirm(`Delete "Runbook"?`)
	require.NoError(t, err)
	assert.Equal(t, []string{`Delete "Runbook"? [y/N]: `}, r.prompts)
}

func TestPrompter_Interrupt(t *testing.T) {
	p := NewPrompterWithReader(&scriptedReader{err: readline.ErrInterrupt})
	_, err := p.Confirm("Delete?")
	assert.ErrorIs(t, err, ErrAborted)

	p = NewPrompterWithReader(&scriptedReader{})
	_, err = p.Choose("Next?", "retry", "cancel")
	assert.ErrorIs(t, err, ErrAborted)
}

func TestPrompter_ReadError(t *testing.T) {
	p := NewPrompterWithReader(&scriptedReader{err: errors.New("tty gone")})
	_, err := p.Confirm("Delete?")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAborted)
}

func TestPrompter_Choose(t *testing.T) {
	r := &scriptedReader{lines: []string{"what", "R"}}
	got, err := NewPrompterWithReader(r).Choose("Deletion failed", "retry", "cancel")
	require.NoError(t, err)
	assert.Equal(t, "retry", got)
	assert.Len(t, r.prompts, 2, "invalid answers ask again")

	got, err = NewPrompterWithReader(&scriptedReader{lines: []string{"cancel"}}).Choose("x", "retry", "cancel")
	require.NoError(t, err)
	assert.Equal(t, "cancel", got)

	_, err = NewPrompterWithReader(&scriptedReader{}).Choose("x")
	assert.Error(t, err)
}

func TestPrompter_Close(t *testing.T) {
	r := &scriptedReader{}
	require.NoError(t, NewPrompterWithReader(r).Close())
	assert.True(t, r.closed)
}
