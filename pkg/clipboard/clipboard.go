// Package clipboard delivers share links to the user's clipboard. Terminal
// writes an OSC 52 escape sequence, which most terminal emulators (and
// multiplexers with passthrough enabled) forward to the system clipboard;
// Memory keeps the text for tests and headless use.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-isatty"
)

var ErrNotTerminal = errors.New("clipboard: output is not a terminal")

// Writer places text on a clipboard.
type Writer interface {
	Copy(text string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(text string) error

func (f WriterFunc) Copy(text string) error { return f(text) }

// TerminalOption customises a Terminal.
type TerminalOption func(*Terminal)

// WithForce skips the TTY check, e.g. when stdout is piped through a
// multiplexer that still understands OSC 52.
func WithForce(force bool) TerminalOption {
	return func(t *Terminal) {
		t.force = force
	}
}

// Terminal writes OSC 52 sequences to out.
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	force bool
}

// NewTerminal writes to out, or os.Stdout when out is nil.
func NewTerminal(out io.Writer, options ...TerminalOption) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	t := &Terminal{out: out}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (t *Terminal) Copy(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.force && !IsTerminal(t.out) {
		return ErrNotTerminal
	}
	if _, err := io.WriteString(t.out, ansi.SetSystemClipboard(text)); err != nil {
		return fmt.Errorf("clipboard: write: %w", err)
	}
	return nil
}

// Memory records copied text.
type Memory struct {
	mu      sync.Mutex
	history []string
}

func (m *Memory) Copy(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, text)
	return nil
}

// Last returns the most recent text, if any.
func (m *Memory) Last() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return "", false
	}
	return m.history[len(m.history)-1], true
}

// History returns every copied text in order.
func (m *Memory) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}
