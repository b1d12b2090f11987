// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package cache

import (
	"sync"
	"testing"
)

func TestMatcher_Contains(t *testing.T) {
	m := NewKeywordMatcher("agent", "bot", "crawler", "spider", "scraper", "curl", "wget", "python", "java")

	tests := []struct {
		ua   string
		want bool
	}{
		{"Mozilla/5.0 (compatible; Googlebot/2.1)", true},
		{"curl/8.4.0", true},
		{"Wget/1.21", true},
		{"python-requests/2.31", true},
		{"Java/17.0.2", true},
		{"Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0", false},
		{"", false},
		{"SCRAPER v1", true},
	}

	for _, tt := range tests {
		t.Run(tt.ua, func(t *testing.T) {
			if got := m.Contains(tt.ua); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.ua, got, tt.want)
			}
		})
	}
}

func TestMatcher_Matches(t *testing.T) {
	m := NewMatcher()
	m.Add("he", "a")
	m.Add("she", "b")
	m.Add("hers", "c")
	m.Build()

	got := m.Matches("ushers")
	want := map[string]int{"she": 1, "he": 2, "hers": 2}
	if len(got) != len(want) {
		t.Fatalf("Matches() = %+v, want %d matches", got, len(want))
	}
	for _, mt := range got {
		pos, ok := want[mt.Text]
		if !ok || pos != mt.Position {
			t.Errorf("match %q at %d, want position %d", mt.Text, mt.Position, pos)
		}
	}

	first, ok := m.First("ushers")
	if !ok || first.Text != "she" || first.Tag != "b" {
		t.Errorf("First() = %+v, %v", first, ok)
	}
}

func TestMatcher_Unbuilt(t *testing.T) {
	m := NewMatcher()
	m.Add("bot", "")
	if m.Contains("bot") {
		t.Error("unbuilt matcher reported a match")
	}
	m.Add("", "")
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (empty pattern ignored)", m.Len())
	}
}

func TestMatcher_ConcurrentSearch(t *testing.T) {
	m := NewKeywordMatcher("", "curl", "bot")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if !m.Contains("curl/7.0") {
					t.Error("Contains() = false")
					return
				}
			}
		}()
	}
	wg.Wait()
}
