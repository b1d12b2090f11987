// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package cache

import "time"

// Deadline is an entry in an ExpiryHeap.
type Deadline[T any] struct {
	Key   string
	Value T
	At    time.Time
	index int
}

// ExpiryHeap is a keyed min-heap ordered by deadline.
//
// Each key appears at most once: pushing an existing key moves its
// deadline instead of adding a second entry, so a scheduler driven by the
// heap never fires twice for the same subject.
//
// ExpiryHeap is not safe for concurrent use.
type ExpiryHeap[T any] struct {
	items []*Deadline[T]
	byKey map[string]*Deadline[T]
}

// NewExpiryHeap creates an empty heap.
func NewExpiryHeap[T any]() *ExpiryHeap[T] {
	return &ExpiryHeap[T]{byKey: make(map[string]*Deadline[T])}
}

// Push schedules key at the given deadline, replacing any existing entry
// for key. It reports whether the key was already present.
func (h *ExpiryHeap[T]) Push(key string, value T, at time.Time) (replaced bool) {
	if d, ok := h.byKey[key]; ok {
		d.Value = value
		d.At = at
		h.fix(d.index)
		return true
	}

	d := &Deadline[T]{Key: key, Value: value, At: at, index: len(h.items)}
	h.items = append(h.items, d)
	h.byKey[key] = d
	h.up(d.index)
	return false
}

// Peek returns the earliest deadline without removing it.
func (h *ExpiryHeap[T]) Peek() (*Deadline[T], bool) {
	if len(h.items) == 0 {
		return nil, false
	}
	return h.items[0], true
}

// Pop removes and returns the earliest deadline.
func (h *ExpiryHeap[T]) Pop() (*Deadline[T], bool) {
	if len(h.items) == 0 {
		return nil, false
	}
	return h.removeAt(0), true
}

// Get returns the entry for key.
func (h *ExpiryHeap[T]) Get(key string) (*Deadline[T], bool) {
	d, ok := h.byKey[key]
	return d, ok
}

// Remove drops key from the heap and reports whether it was present.
func (h *ExpiryHeap[T]) Remove(key string) bool {
	d, ok := h.byKey[key]
	if !ok {
		return false
	}
	h.removeAt(d.index)
	return true
}

// PopDue removes and returns every entry whose deadline is at or before
// now, earliest first.
func (h *ExpiryHeap[T]) PopDue(now time.Time) []*Deadline[T] {
	var due []*Deadline[T]
	for len(h.items) > 0 && !h.items[0].At.After(now) {
		due = append(due, h.removeAt(0))
	}
	return due
}

// Len returns the number of scheduled entries.
func (h *ExpiryHeap[T]) Len() int { return len(h.items) }

func (h *ExpiryHeap[T]) removeAt(i int) *Deadline[T] {
	last := len(h.items) - 1
	d := h.items[i]
	delete(h.byKey, d.Key)

	if i != last {
		h.items[i] = h.items[last]
		h.items[i].index = i
	}
	h.items[last] = nil
	h.items = h.items[:last]

	if i < len(h.items) {
		h.fix(i)
	}
	d.index = -1
	return d
}

func (h *ExpiryHeap[T]) fix(i int) {
	if !h.up(i) {
		h.down(i)
	}
}

func (h *ExpiryHeap[T]) up(i int) bool {
	moved := false
	for i > 0 {
		parent := (i - 1) / 2
		if !h.items[i].At.Before(h.items[parent].At) {
			break
		}
		h.swap(i, parent)
		i = parent
		moved = true
	}
	return moved
}

func (h *ExpiryHeap[T]) down(i int) {
	n := len(h.items)
	for {
		smallest := i
		if l := 2*i + 1; l < n && h.items[l].At.Before(h.items[smallest].At) {
			smallest = l
		}
		if r := 2*i + 2; r < n && h.items[r].At.Before(h.items[smallest].At) {
			smallest = r
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

func (h *ExpiryHeap[T]) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}
