package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("aborted")

// LineReader reads one line of input. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// Prompter asks yes/no and multiple-choice questions.
type Prompter struct {
	rl LineReader
}

// NewPrompter creates a readline-backed Prompter on the terminal.
func NewPrompter(out io.Writer) (*Prompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "> ",
		Stdout:                 out,
		InterruptPrompt:        "^C",
		EOFPrompt:              "",
		DisableAutoSaveHistory: true,
		HistoryLimit:           -1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	return &Prompter{rl: rl}, nil
}

// NewPrompterWithReader wraps an existing reader.
func NewPrompterWithReader(rl LineReader) *Prompter {
	return &Prompter{rl: rl}
}

// Close releases the terminal.
func (p *Prompter) Close() error {
	return p.rl.Close()
}

// Confirm asks a yes/no question; anything but y/yes is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.ask(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Choose asks until the answer is one of options, matched by full name or
// first letter, and returns the chosen option.
func (p *Prompter) Choose(question string, options ...string) (string, error) {
	if len(options) == 0 {
		return "", errors.New("no options to choose from")
	}
	prompt := fmt.Sprintf("%s [%s]: ", question, strings.Join(options, "/"))
	for {
		answer, err := p.ask(prompt)
		if err != nil {
			return "", err
		}
		answer = strings.ToLower(answer)
		for _, opt := range options {
			if answer == strings.ToLower(opt) || (answer != "" && strings.HasPrefix(strings.ToLower(opt), answer) && len(answer) == 1) {
				return opt, nil
			}
		}
	}
}

func (p *Prompter) ask(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", ErrAborted
	}
	if err != nil {
		return "", fmt.Errorf("readline error: %w", err)
	}
	return strings.TrimSpace(line), nil
}
