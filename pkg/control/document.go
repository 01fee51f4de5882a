package control

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Document is an in-memory control tree. It is safe for concurrent use and
// calls element listeners without holding its lock, so a listener may read
// or mount further controls.
type Document struct {
	mu      sync.RWMutex
	root    *Node
	index   map[string]*Node
	version uint64
}

// NewDocument creates a document whose root group carries rootID.
func NewDocument(rootID string) *Document {
	doc := &Document{index: make(map[string]*Node)}
	doc.root = &Node{doc: doc, id: rootID, group: true}
	doc.index[rootID] = doc.root
	return doc
}

// Root returns the top-level group.
func (d *Document) Root() *Node { return d.root }

// Container resolves a group by id. A leading '#' is accepted.
func (d *Document) Container(selector string) (Container, error) {
	id := strings.TrimPrefix(strings.TrimSpace(selector), "#")
	d.mu.RLock()
	defer d.mu.RUnlock()
	node, ok := d.index[id]
	if !ok || !node.group {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	return node, nil
}

// Element resolves a mounted input by id.
func (d *Document) Element(id string) (*Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	node, ok := d.index[id]
	if !ok || node.group {
		return nil, false
	}
	return node, true
}

// Version increases whenever nodes are added or removed. Value changes do
// not count.
func (d *Document) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Walk visits the tree depth first in mount order. Returning an error stops
// the walk.
func (d *Document) Walk(fn func(n *Node, depth int) error) error {
	return d.root.walk(fn, 0)
}

// Node is a group or an input inside a Document.
type Node struct {
	doc      *Document
	id       string
	group    bool
	label    string
	parent   *Node
	children []*Node
	removed  bool

	desc      Descriptor
	value     any
	listeners map[int]func(any)
	nextID    int
}

var (
	_ Container = (*Node)(nil)
	_ Element   = (*Node)(nil)
)

func (n *Node) ID() string { return n.id }

// IsGroup reports whether n is a container.
func (n *Node) IsGroup() bool { return n.group }

// Label returns the group label.
func (n *Node) Label() string {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.label
}

// Children returns a snapshot of the direct children.
func (n *Node) Children() []*Node {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return append([]*Node(nil), n.children...)
}

// Parent returns the enclosing group, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

func (n *Node) Mount(d Descriptor) (Element, error) {
	if d.Role == "" {
		d.Role = RoleField
	}
	child := &Node{id: d.ID, desc: d, value: d.Value}
	if err := n.attach(child); err != nil {
		return nil, err
	}
	return child, nil
}

func (n *Node) Group(id, label string) (Container, error) {
	child := &Node{id: id, group: true, label: label}
	if err := n.attach(child); err != nil {
		return nil, err
	}
	return child, nil
}

func (n *Node) attach(child *Node) error {
	if strings.TrimSpace(child.id) == "" {
		return ErrInvalidID
	}
	doc := n.doc
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if !n.group {
		return fmt.Errorf("control: %q is not a container", n.id)
	}
	if n.removed {
		return fmt.Errorf("%w: %q", ErrDetached, n.id)
	}
	if _, exists := doc.index[child.id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, child.id)
	}
	child.doc = doc
	child.parent = n
	n.children = append(n.children, child)
	doc.index[child.id] = child
	doc.version++
	return nil
}

func (n *Node) Remove() error {
	doc := n.doc
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if n.removed {
		return nil
	}
	if n.parent == nil {
		return fmt.Errorf("control: cannot remove root %q", n.id)
	}
	siblings := n.parent.children
	for i, sibling := range siblings {
		if sibling == n {
			n.parent.children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	n.detach()
	doc.version++
	return nil
}

func (n *Node) detach() {
	n.removed = true
	delete(n.doc.index, n.id)
	n.listeners = nil
	for _, child := range n.children {
		child.detach()
	}
}

// Descriptor returns the mount descriptor with the current value.
func (n *Node) Descriptor() Descriptor {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	d := n.desc
	d.Value = n.value
	return d
}

func (n *Node) Value() any {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.value
}

func (n *Node) SetValue(v any) {
	n.doc.mu.Lock()
	n.value = v
	n.doc.mu.Unlock()
}

func (n *Node) Listen(fn func(v any)) func() {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	if n.listeners == nil {
		n.listeners = make(map[int]func(any))
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	return func() {
		n.doc.mu.Lock()
		delete(n.listeners, id)
		n.doc.mu.Unlock()
	}
}

// Input simulates a user edit: the value is stored and every listener is
// called in registration order.
func (n *Node) Input(v any) {
	n.doc.mu.Lock()
	if n.removed {
		n.doc.mu.Unlock()
		return
	}
	n.value = v
	ids := make([]int, 0, len(n.listeners))
	for id := range n.listeners {
		ids = append(ids, id)
	}
	listeners := make([]func(any), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		listeners = append(listeners, n.listeners[id])
	}
	n.doc.mu.Unlock()

	for _, fn := range listeners {
		fn(v)
	}
}

// Click simulates activating a button.
func (n *Node) Click() { n.Input(nil) }

func (n *Node) walk(fn func(*Node, int) error, depth int) error {
	if err := fn(n, depth); err != nil {
		return err
	}
	for _, child := range n.Children() {
		if err := child.walk(fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}
