// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package cache

import "testing"

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v", v, ok)
	}
	c.Put("c", 3) // evicts b, since a was touched

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if c.Evictions() != 1 {
		t.Errorf("Evictions() = %d, want 1", c.Evictions())
	}
}

func TestLRU_Update(t *testing.T) {
	c := NewLRU[[]string](4)
	appendFn := func(v string) func([]string, bool) []string {
		return func(cur []string, _ bool) []string { return append(cur, v) }
	}

	c.Update("u1", appendFn("10.0"))
	got := c.Update("u1", appendFn("10.1"))
	if len(got) != 2 || got[1] != "10.1" {
		t.Errorf("Update() = %v", got)
	}

	var sawExisting bool
	c.Update("u1", func(cur []string, ok bool) []string {
		sawExisting = ok
		return cur
	})
	if !sawExisting {
		t.Error("Update() did not see existing value")
	}

	if !c.Remove("u1") || c.Remove("u1") {
		t.Error("Remove() results wrong")
	}
}

func TestLRU_MinimumCapacity(t *testing.T) {
	c := NewLRU[string](0)
	c.Put("a", "x")
	c.Put("b", "y")
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_PeekKeepsOrder(t *testing.T) {
	c := NewLRU[int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	if v, ok := c.Peek("a"); !ok || v != 1 {
		t.Fatalf("Peek(a) = %d, %v", v, ok)
	}
	c.Put("c", 3) // a is still the oldest

	if _, ok := c.Peek("a"); ok {
		t.Error("Peek() refreshed recency")
	}
}
