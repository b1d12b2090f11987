// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package scoring

import (
	"slices"

	"github.com/tomtom215/sentinel/internal/cache"
)

const (
	// HistoryDepth is how many distinct network prefixes are kept per caller.
	HistoryDepth = 20

	// DefaultHistoryCallers bounds how many callers are tracked at once.
	DefaultHistoryCallers = 10000
)

// LocationHistory remembers the distinct network prefixes each caller has
// connected from, oldest first. Least recently seen callers are dropped
// once the caller limit is reached.
type LocationHistory struct {
	callers *cache.LRU[[]string]
}

// NewLocationHistory creates a history tracking at most maxCallers callers.
func NewLocationHistory(maxCallers int) *LocationHistory {
	if maxCallers <= 0 {
		maxCallers = DefaultHistoryCallers
	}
	return &LocationHistory{callers: cache.NewLRU[[]string](maxCallers)}
}

// Prefixes returns a copy of the caller's history without refreshing it.
func (h *LocationHistory) Prefixes(caller string) []string {
	cur, _ := h.callers.Peek(caller)
	return slices.Clone(cur)
}

// Record adds prefix to the caller's history if it is new, dropping the
// oldest prefix past HistoryDepth. A prefix already present keeps its slot.
func (h *LocationHistory) Record(caller, prefix string) {
	if caller == "" || prefix == "" {
		return
	}
	h.callers.Update(caller, func(cur []string, _ bool) []string {
		if slices.Contains(cur, prefix) {
			return cur
		}
		next := append(slices.Clone(cur), prefix)
		if len(next) > HistoryDepth {
			next = next[len(next)-HistoryDepth:]
		}
		return next
	})
}

// Callers returns how many callers are tracked.
func (h *LocationHistory) Callers() int {
	return h.callers.Len()
}
