// Package control defines the rendering back-end the parsers mount their
// inputs on, plus Document, an in-memory implementation that renderers and
// interactive front-ends drive.
package control

import (
	"errors"
	"io"

	"github.com/goliatone/go-paramconfig/pkg/model"
)

var (
	ErrNotFound    = errors.New("control: container not found")
	ErrDuplicateID = errors.New("control: duplicate element id")
	ErrDetached    = errors.New("control: container has been removed")
	ErrInvalidID   = errors.New("control: id is required")
)

// Role distinguishes field inputs from the structural controls a
// collection adds around its rows.
type Role string

const (
	RoleField      Role = "field"
	RoleRowSelect  Role = "row-select"
	RoleAddRow     Role = "add-row"
	RoleDeleteRows Role = "delete-rows"
)

// Descriptor is everything a back-end needs to draw one input.
type Descriptor struct {
	ID      string
	Kind    model.Kind
	Role    Role
	Label   string
	Tooltip string
	Options []string
	Attrs   *model.Attrs
	Value   any
}

// Element is a mounted input. Value is authoritative: parsers read it
// rather than caching their own copy.
type Element interface {
	ID() string
	Descriptor() Descriptor
	Value() any
	// SetValue overwrites the displayed value without notifying listeners.
	SetValue(v any)
	// Listen registers fn for user edits and returns a function removing it.
	Listen(fn func(v any)) (cancel func())
}

// Container is a mount point for elements and nested groups.
type Container interface {
	ID() string
	Mount(d Descriptor) (Element, error)
	Group(id, label string) (Container, error)
	// Remove detaches the container and everything below it.
	Remove() error
}

// File is the value a user hands to a file input. Type may be empty, in
// which case the reader sniffs it from the name and content.
type File struct {
	Name   string
	Type   string
	Reader io.Reader
}
