// Package slotmap provides a generational arena: values are addressed by
// keys that stay valid while the value lives and are rejected after it is
// removed, even when the slot is reused.
//
// A Map is not safe for concurrent use; callers hold their own lock.
package slotmap

import "fmt"

// Key addresses one value in a Map. The zero Key never resolves.
type Key struct {
	index      uint32
	generation uint32
}

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool { return k.generation == 0 }

// String renders k in a form safe for element ids, e.g. "3v2".
func (k Key) String() string {
	return fmt.Sprintf("%dv%d", k.index, k.generation)
}

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Map stores values of type T under generational keys.
type Map[T any] struct {
	slots []slot[T]
	free  []uint32
	size  int
}

// New returns an empty Map.
func New[T any]() *Map[T] {
	return &Map[T]{}
}

// Insert stores value and returns its key. Freed slots are reused with a
// bumped generation.
func (m *Map[T]) Insert(value T) Key {
	m.size++
	if n := len(m.free); n > 0 {
		index := m.free[n-1]
		m.free = m.free[:n-1]
		s := &m.slots[index]
		s.value = value
		s.occupied = true
		return Key{index: index, generation: s.generation}
	}
	m.slots = append(m.slots, slot[T]{value: value, generation: 1, occupied: true})
	return Key{index: uint32(len(m.slots) - 1), generation: 1}
}

func (m *Map[T]) lookup(k Key) *slot[T] {
	if k.IsZero() || int(k.index) >= len(m.slots) {
		return nil
	}
	s := &m.slots[k.index]
	if !s.occupied || s.generation != k.generation {
		return nil
	}
	return s
}

// Get returns the value stored under k.
func (m *Map[T]) Get(k Key) (T, bool) {
	if s := m.lookup(k); s != nil {
		return s.value, true
	}
	var zero T
	return zero, false
}

// Ptr returns a pointer to the stored value, or nil for a stale key. The
// pointer is invalidated by the next Insert.
func (m *Map[T]) Ptr(k Key) *T {
	if s := m.lookup(k); s != nil {
		return &s.value
	}
	return nil
}

// Contains reports whether k resolves.
func (m *Map[T]) Contains(k Key) bool { return m.lookup(k) != nil }

// Remove deletes the value under k and returns it.
func (m *Map[T]) Remove(k Key) (T, bool) {
	var zero T
	s := m.lookup(k)
	if s == nil {
		return zero, false
	}
	value := s.value
	s.value = zero
	s.occupied = false
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	m.free = append(m.free, k.index)
	m.size--
	return value, true
}

// Len reports the number of live values.
func (m *Map[T]) Len() int { return m.size }

// Each visits live values in slot order. fn may modify the value through
// the pointer; it must not call Insert.
func (m *Map[T]) Each(fn func(Key, *T)) {
	for i := range m.slots {
		s := &m.slots[i]
		if s.occupied {
			fn(Key{index: uint32(i), generation: s.generation}, &s.value)
		}
	}
}

// Clear removes every value. Outstanding keys become stale.
func (m *Map[T]) Clear() {
	m.Each(func(k Key, _ *T) { m.Remove(k) })
}
