package tui

import (
	"log/slog"
	"os"
)

// Theme holds the prefixes the editor puts in front of messages.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// DefaultTheme is used when WithTheme is not supplied.
func DefaultTheme() Theme {
	return Theme{InfoPrefix: "› ", ErrorPrefix: "✗ "}
}

// Option configures the editor.
type Option func(*Editor)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(e *Editor) {
		e.theme = theme
	}
}

// WithStatus prints the result of fn after every edit, typically the
// serialised query.
func WithStatus(fn func() string) Option {
	return func(e *Editor) {
		e.status = fn
	}
}

// WithMaxAttempts bounds how often an invalid answer is re-prompted.
func WithMaxAttempts(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithFileReader replaces os.ReadFile for file inputs.
func WithFileReader(fn func(path string) ([]byte, error)) Option {
	return func(e *Editor) {
		if fn != nil {
			e.readFile = fn
		}
	}
}

// WithLogger sets the editor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func defaultEditor() *Editor {
	return &Editor{
		theme:       DefaultTheme(),
		maxAttempts: 3,
		readFile:    os.ReadFile,
		logger:      slog.Default(),
	}
}
