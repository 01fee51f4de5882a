// Package tui edits a control document from the terminal. The Editor plays
// the part of the user: it prompts for a control, writes the answer into it
// and lets the document notify the parsers exactly as a browser would.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-paramconfig/pkg/codec"
	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/render"
)

// DoneLabel ends the editing loop.
const DoneLabel = "Done"

// Editor runs the prompt loop over a document.
type Editor struct {
	doc         *control.Document
	driver      PromptDriver
	theme       Theme
	status      func() string
	maxAttempts int
	readFile    func(string) ([]byte, error)
	logger      *slog.Logger
}

// New builds an editor for doc. Without WithPromptDriver the survey driver
// is used.
func New(doc *control.Document, options ...Option) (*Editor, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	e := defaultEditor()
	e.doc = doc
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver(nil)
	}
	e.logger = e.logger.With("component", "tui")
	return e, nil
}

type entry struct {
	node  *control.Node
	label string
}

// Run shows the control menu until the user picks Done or aborts.
func (e *Editor) Run(ctx context.Context) error {
	for {
		entries := e.entries()
		options := make([]string, 0, len(entries)+1)
		for _, en := range entries {
			options = append(options, en.label)
		}
		options = append(options, DoneLabel)

		idx, err := e.driver.Select(ctx, SelectConfig{
			Message:  e.theme.PromptPrefix + "Edit parameter",
			Options:  options,
			PageSize: 15,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(entries) {
			return nil
		}
		if err := e.Edit(ctx, entries[idx].node); err != nil {
			return err
		}
		if e.status != nil {
			if err := e.driver.Info(ctx, e.theme.InfoPrefix+e.status()); err != nil {
				return err
			}
		}
	}
}

// entries lists every input in document order, indented by depth.
func (e *Editor) entries() []entry {
	var out []entry
	_ = e.doc.Walk(func(n *control.Node, depth int) error {
		if n.IsGroup() {
			return nil
		}
		d := n.Descriptor()
		indent := strings.Repeat("  ", max(depth-1, 0))
		out = append(out, entry{node: n, label: indent + menuLabel(d)})
		return nil
	})
	return out
}

func menuLabel(d control.Descriptor) string {
	switch d.Role {
	case control.RoleRowSelect:
		return fmt.Sprintf("[%s] select row", checkMark(d.Value))
	case control.RoleAddRow, control.RoleDeleteRows:
		return "(" + d.Label + ")"
	}
	label := d.Label
	if label == "" {
		label = d.ID
	}
	switch d.Kind {
	case model.KindButton:
		return "(" + label + ")"
	case model.KindCheckbox:
		return fmt.Sprintf("%s [%s]", label, checkMark(d.Value))
	case model.KindFile:
		if s, _ := d.Value.(string); s != "" {
			return label + " [loaded]"
		}
		return label
	}
	return fmt.Sprintf("%s [%s]", label, render.FormatValue(d.Kind, d.Value))
}

func checkMark(v any) string {
	if b, _ := v.(bool); b {
		return "x"
	}
	return " "
}

// Edit prompts for a new value of node and writes it as user input.
func (e *Editor) Edit(ctx context.Context, node *control.Node) error {
	d := node.Descriptor()
	if d.Role == control.RoleAddRow || d.Role == control.RoleDeleteRows || d.Kind == model.KindButton {
		node.Click()
		return nil
	}

	message := d.Label
	if d.Role == control.RoleRowSelect {
		message = "Select row"
	}
	if message == "" {
		message = d.ID
	}

	var (
		value any
		err   error
	)
	switch d.Kind {
	case model.KindCheckbox:
		current, _ := d.Value.(bool)
		value, err = e.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: current, Help: d.Tooltip})
	case model.KindSelect:
		value, err = e.choose(ctx, message, d)
	case model.KindNumber, model.KindRange:
		value, err = e.prompt(ctx, message, d, func(s string) (any, error) { return parseNumber(s, d.Attrs) })
	case model.KindColor:
		value, err = e.prompt(ctx, message, d, func(s string) (any, error) { return codec.NormaliseColor(s) })
	case model.KindDatetime:
		value, err = e.prompt(ctx, message, d, func(s string) (any, error) { return codec.ParseDatetime(s) })
	case model.KindFile:
		value, err = e.prompt(ctx, message+" (path)", control.Descriptor{Tooltip: d.Tooltip}, e.openFile)
	default:
		value, err = e.prompt(ctx, message, d, func(s string) (any, error) { return s, nil })
	}
	if err != nil {
		return err
	}
	node.Input(value)
	return nil
}

func (e *Editor) choose(ctx context.Context, message string, d control.Descriptor) (any, error) {
	current, _ := d.Value.(string)
	defaultIndex := 0
	for i, option := range d.Options {
		if option == current {
			defaultIndex = i
		}
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:      message,
		Options:      d.Options,
		DefaultIndex: defaultIndex,
		Help:         d.Tooltip,
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(d.Options) {
		return current, nil
	}
	return d.Options[idx], nil
}

// prompt re-asks until parse accepts the answer, reporting each rejection.
func (e *Editor) prompt(ctx context.Context, message string, d control.Descriptor, parse func(string) (any, error)) (any, error) {
	cfg := InputConfig{
		Message: message,
		Default: render.FormatValue(d.Kind, d.Value),
		Help:    d.Tooltip,
	}
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		answer, err := e.driver.Input(ctx, cfg)
		if err != nil {
			return nil, err
		}
		value, err := parse(strings.TrimSpace(answer))
		if err == nil {
			return value, nil
		}
		e.logger.Debug("rejected answer", "control", d.ID, "error", err)
		if err := e.driver.Info(ctx, e.theme.ErrorPrefix+err.Error()); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTooManyAttempts, message)
}

func (e *Editor) openFile(path string) (any, error) {
	if path == "" {
		return nil, fmt.Errorf("a file path is required")
	}
	data, err := e.readFile(path)
	if err != nil {
		return nil, err
	}
	return control.File{Name: filepath.Base(path), Reader: bytes.NewReader(data)}, nil
}

func parseNumber(s string, attrs *model.Attrs) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if attrs != nil {
		if attrs.Min != nil && f < *attrs.Min {
			return 0, fmt.Errorf("must be at least %s", codec.FormatNumber(*attrs.Min))
		}
		if attrs.Max != nil && f > *attrs.Max {
			return 0, fmt.Errorf("must be at most %s", codec.FormatNumber(*attrs.Max))
		}
	}
	return f, nil
}
