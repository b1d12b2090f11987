// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package cache

import (
	"fmt"
	"math/rand"
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestExpiryHeap_Order(t *testing.T) {
	h := NewExpiryHeap[string]()
	h.Push("c", "third", t0.Add(3*time.Second))
	h.Push("a", "first", t0.Add(1*time.Second))
	h.Push("b", "second", t0.Add(2*time.Second))

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	if d, ok := h.Peek(); !ok || d.Key != "a" {
		t.Errorf("Peek() = %v, want a", d)
	}
	for _, want := range []string{"a", "b", "c"} {
		d, ok := h.Pop()
		if !ok || d.Key != want {
			t.Errorf("Pop() = %v, want %s", d, want)
		}
	}
	if _, ok := h.Pop(); ok {
		t.Error("Pop() on empty heap returned ok")
	}
}

func TestExpiryHeap_PushExistingKeyReschedules(t *testing.T) {
	h := NewExpiryHeap[int]()
	h.Push("ip:1.2.3.4", 1, t0.Add(time.Minute))
	h.Push("user:u1", 1, t0.Add(2*time.Minute))

	if replaced := h.Push("ip:1.2.3.4", 2, t0.Add(5*time.Minute)); !replaced {
		t.Error("Push(existing) replaced = false")
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (no duplicate entry)", h.Len())
	}

	d, _ := h.Peek()
	if d.Key != "user:u1" {
		t.Errorf("Peek() = %s, want user:u1 after pushing ip forward", d.Key)
	}
	got, ok := h.Get("ip:1.2.3.4")
	if !ok || got.Value != 2 || !got.At.Equal(t0.Add(5*time.Minute)) {
		t.Errorf("Get() = %+v", got)
	}
}

func TestExpiryHeap_PopDue(t *testing.T) {
	h := NewExpiryHeap[struct{}]()
	for i := 0; i < 5; i++ {
		h.Push(fmt.Sprintf("k%d", i), struct{}{}, t0.Add(time.Duration(i)*time.Minute))
	}

	due := h.PopDue(t0.Add(2 * time.Minute))
	if len(due) != 3 {
		t.Fatalf("PopDue() returned %d entries, want 3 (deadline inclusive)", len(due))
	}
	for i, d := range due {
		if d.Key != fmt.Sprintf("k%d", i) {
			t.Errorf("due[%d] = %s", i, d.Key)
		}
	}
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
	if len(h.PopDue(t0.Add(-time.Hour))) != 0 {
		t.Error("PopDue() in the past returned entries")
	}
}

func TestExpiryHeap_Remove(t *testing.T) {
	h := NewExpiryHeap[string]()
	h.Push("a", "", t0.Add(1*time.Second))
	h.Push("b", "", t0.Add(2*time.Second))
	h.Push("c", "", t0.Add(3*time.Second))

	if !h.Remove("b") {
		t.Error("Remove(b) = false")
	}
	if h.Remove("b") {
		t.Error("second Remove(b) = true")
	}
	if _, ok := h.Get("b"); ok {
		t.Error("Get(b) found removed key")
	}
	for _, want := range []string{"a", "c"} {
		if d, _ := h.Pop(); d.Key != want {
			t.Errorf("Pop() = %s, want %s", d.Key, want)
		}
	}
}

func TestExpiryHeap_RandomizedOrdering(t *testing.T) {
	h := NewExpiryHeap[int]()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		key := fmt.Sprintf("k%d", rng.Intn(200)) // forces reschedules
		h.Push(key, i, t0.Add(time.Duration(rng.Intn(10000))*time.Millisecond))
		if rng.Intn(10) == 0 {
			h.Remove(fmt.Sprintf("k%d", rng.Intn(200)))
		}
	}

	last := time.Time{}
	for h.Len() > 0 {
		d, _ := h.Pop()
		if d.At.Before(last) {
			t.Fatalf("heap order violated: %v before %v", d.At, last)
		}
		last = d.At
	}
}
