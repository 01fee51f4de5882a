package slotmap

import "testing"

func TestInsertGetRemove(t *testing.T) {
	m := New[string]()
	a := m.Insert("a")
	b := m.Insert("b")

	if got, ok := m.Get(a); !ok || got != "a" {
		t.Fatalf("Get(a) = %q, %v", got, ok)
	}
	if m.Len() != 2 {
		t.Fatalf("Len = %d", m.Len())
	}
	if got, ok := m.Remove(a); !ok || got != "a" {
		t.Fatalf("Remove(a) = %q, %v", got, ok)
	}
	if m.Contains(a) {
		t.Fatalf("removed key should be stale")
	}
	if _, ok := m.Remove(a); ok {
		t.Fatalf("double remove should fail")
	}
	if got, _ := m.Get(b); got != "b" {
		t.Fatalf("Get(b) = %q", got)
	}
}

func TestReusedSlotRejectsStaleKey(t *testing.T) {
	m := New[int]()
	old := m.Insert(1)
	m.Remove(old)
	fresh := m.Insert(2)

	if old == fresh {
		t.Fatalf("reused slot must carry a new generation")
	}
	if _, ok := m.Get(old); ok {
		t.Fatalf("stale key resolved after slot reuse")
	}
	if got, ok := m.Get(fresh); !ok || got != 2 {
		t.Fatalf("Get(fresh) = %d, %v", got, ok)
	}
}

func TestPtrAndEach(t *testing.T) {
	m := New[int]()
	keys := []Key{m.Insert(0), m.Insert(1), m.Insert(2)}
	*m.Ptr(keys[1]) = 10

	sum := 0
	m.Each(func(_ Key, v *int) { sum += *v })
	if sum != 12 {
		t.Fatalf("sum = %d, want 12", sum)
	}

	m.Clear()
	if m.Len() != 0 || m.Contains(keys[0]) {
		t.Fatalf("Clear left values behind")
	}
	if m.Ptr(keys[2]) != nil {
		t.Fatalf("Ptr on stale key should be nil")
	}
}

func TestZeroKey(t *testing.T) {
	m := New[int]()
	m.Insert(1)
	var zero Key
	if !zero.IsZero() || m.Contains(zero) {
		t.Fatalf("zero key must never resolve")
	}
}
