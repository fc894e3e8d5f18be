// Package fixedlist provides a bounded, array-backed ordered list.
//
// Removal compacts the list by shifting later entries down one slot, so the
// relative order of the remaining entries is always the insertion order.
// Layer resolution depends on that property, so do not replace the removal
// with swap-delete.
package fixedlist

// List is an ordered list with a fixed capacity.
// The zero value is unusable, use New.
type List[T comparable] struct {
	items []T
	size  int
}

func New[T comparable](capacity int) *List[T] {
	return &List[T]{
		items: make([]T, capacity),
	}
}

// Push appends v and reports whether it was stored.
// A full list drops v and keeps its contents untouched.
func (l *List[T]) Push(v T) bool {
	if l.size >= len(l.items) {
		return false
	}
	l.items[l.size] = v
	l.size++
	return true
}

// RemoveFirst removes the first occurrence of v scanning from the bottom.
func (l *List[T]) RemoveFirst(v T) bool {
	for i := 0; i < l.size; i++ {
		if l.items[i] != v {
			continue
		}
		copy(l.items[i:l.size-1], l.items[i+1:l.size])
		l.size--
		var zero T
		l.items[l.size] = zero
		return true
	}
	return false
}

// Top returns the most recently pushed entry still present.
func (l *List[T]) Top() (T, bool) {
	if l.size == 0 {
		var zero T
		return zero, false
	}
	return l.items[l.size-1], true
}

func (l *List[T]) Contains(v T) bool {
	for i := 0; i < l.size; i++ {
		if l.items[i] == v {
			return true
		}
	}
	return false
}

func (l *List[T]) Len() int {
	return l.size
}

func (l *List[T]) Cap() int {
	return len(l.items)
}

func (l *List[T]) IsFull() bool {
	return l.size == len(l.items)
}

func (l *List[T]) Clear() {
	var zero T
	for i := 0; i < l.size; i++ {
		l.items[i] = zero
	}
	l.size = 0
}

// Items returns a copy of the entries, bottom first.
func (l *List[T]) Items() []T {
	out := make([]T, l.size)
	copy(out, l.items[:l.size])
	return out
}
