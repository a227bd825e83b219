// Package sortedlist provides a small ordered-by-key container used
// pervasively across the core to keep emitted collections deterministic:
// chunks by indexes, relations by unique_id, dependency sets lexicographically.
package sortedlist

import "sort"

// List keeps items ordered by a string key extracted via KeyFunc. Insertion,
// lookup and union are all O(log n) + O(n) shift, which is fine at the sizes
// the core deals with (chunks, relations, dependency sets per resource).
type List[T any] struct {
	items []T
	key   func(T) string
}

// New creates an empty List ordered by key.
func New[T any](key func(T) string) *List[T] {
	return &List[T]{key: key}
}

// FromSlice builds a List from an unsorted slice, keeping the last item seen
// for any duplicate key.
func FromSlice[T any](items []T, key func(T) string) *List[T] {
	l := New(key)
	for _, it := range items {
		l.Insert(it)
	}
	return l
}

func (l *List[T]) indexOf(k string) (int, bool) {
	i := sort.Search(len(l.items), func(i int) bool {
		return l.key(l.items[i]) >= k
	})
	if i < len(l.items) && l.key(l.items[i]) == k {
		return i, true
	}
	return i, false
}

// Insert places item in its sorted position. If an item with the same key
// already exists, it is replaced.
func (l *List[T]) Insert(item T) {
	k := l.key(item)
	i, found := l.indexOf(k)
	if found {
		l.items[i] = item
		return
	}
	l.items = append(l.items, item)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = item
}

// Find returns the item with the given key, if present.
func (l *List[T]) Find(k string) (T, bool) {
	i, found := l.indexOf(k)
	if !found {
		var zero T
		return zero, false
	}
	return l.items[i], true
}

// Items returns the underlying items in sorted order. Callers must not
// mutate the returned slice.
func (l *List[T]) Items() []T {
	return l.items
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	return len(l.items)
}

// Union merges other into l, in place, preferring other's value on key
// collision (consistent with "strongest request wins" merge semantics used
// by the pending-state accumulation in the query executor).
func (l *List[T]) Union(other *List[T]) {
	for _, item := range other.items {
		l.Insert(item)
	}
}

// Merge returns a new List containing the union of a and b, preferring b's
// value on key collision.
func Merge[T any](a, b *List[T]) *List[T] {
	out := New(a.key)
	out.Union(a)
	out.Union(b)
	return out
}
