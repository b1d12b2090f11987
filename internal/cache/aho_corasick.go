// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package cache

import (
	"strings"
	"sync"
)

// Matcher finds any of a set of keywords in a text in a single pass using
// the Aho-Corasick automaton. Matching is case-insensitive.
//
//	m := cache.NewMatcher()
//	m.Add("curl", "tool")
//	m.Add("bot", "crawler")
//	m.Build()
//	m.Contains("curl/8.4.0") // true
//
// Patterns must be added before Build. Search methods are safe for
// concurrent use once built.
type Matcher struct {
	mu       sync.RWMutex
	root     *acNode
	patterns []Keyword
	built    bool
}

// Keyword is a pattern and an optional tag reported with its matches.
type Keyword struct {
	Text string
	Tag  string
}

// Match is a keyword occurrence in a searched text.
type Match struct {
	Keyword
	Position int // byte offset of the match in the lowered text
}

type acNode struct {
	next   map[rune]*acNode
	fail   *acNode
	output []int
}

func newACNode() *acNode {
	return &acNode{next: make(map[rune]*acNode)}
}

// NewMatcher returns an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{root: newACNode()}
}

// NewKeywordMatcher builds a matcher for words, all sharing tag.
func NewKeywordMatcher(tag string, words ...string) *Matcher {
	m := NewMatcher()
	for _, w := range words {
		m.Add(w, tag)
	}
	m.Build()
	return m
}

// Add registers a pattern. Empty patterns are ignored.
func (m *Matcher) Add(pattern, tag string) {
	if pattern == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, Keyword{Text: strings.ToLower(pattern), Tag: tag})
	m.built = false
}

// Build compiles the automaton. It is a no-op when nothing changed.
func (m *Matcher) Build() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.built {
		return
	}

	m.root = newACNode()
	for i, p := range m.patterns {
		node := m.root
		for _, ch := range p.Text {
			child, ok := node.next[ch]
			if !ok {
				child = newACNode()
				node.next[ch] = child
			}
			node = child
		}
		node.output = append(node.output, i)
	}

	// Breadth-first pass to wire failure links.
	queue := make([]*acNode, 0, len(m.root.next))
	for _, child := range m.root.next {
		child.fail = m.root
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for ch, child := range cur.next {
			queue = append(queue, child)
			f := cur.fail
			for f != nil && f.next[ch] == nil {
				f = f.fail
			}
			if f == nil {
				child.fail = m.root
			} else {
				child.fail = f.next[ch]
				child.output = append(child.output, child.fail.output...)
			}
		}
	}
	m.built = true
}

// scan walks text and calls emit for every match until emit returns false.
func (m *Matcher) scan(text string, emit func(Match) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.built || len(m.patterns) == 0 {
		return
	}

	lowered := strings.ToLower(text)
	node := m.root
	for i, ch := range lowered {
		for node != m.root && node.next[ch] == nil {
			node = node.fail
		}
		if next, ok := node.next[ch]; ok {
			node = next
		}
		end := i + len(string(ch))
		for _, idx := range node.output {
			kw := m.patterns[idx]
			if !emit(Match{Keyword: kw, Position: end - len(kw.Text)}) {
				return
			}
		}
	}
}

// Matches returns every keyword occurrence in text.
func (m *Matcher) Matches(text string) []Match {
	var out []Match
	m.scan(text, func(mt Match) bool {
		out = append(out, mt)
		return true
	})
	return out
}

// First returns the first keyword occurrence in text.
func (m *Matcher) First(text string) (Match, bool) {
	var (
		found Match
		ok    bool
	)
	m.scan(text, func(mt Match) bool {
		found, ok = mt, true
		return false
	})
	return found, ok
}

// Contains reports whether any keyword occurs in text.
func (m *Matcher) Contains(text string) bool {
	_, ok := m.First(text)
	return ok
}

// Len returns the number of registered patterns.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.patterns)
}
