// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package scoring

import (
	"fmt"
	"net/netip"
	"slices"
	"time"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/cache"
)

// Score bounds and contextual weights.
const (
	MinScore = 0
	MaxScore = 100

	RepetitionStep = 10
	RepetitionCap  = 50

	OffHoursWeight        = 15
	MaliciousSourceWeight = 40
	UnusualLocationWeight = 20
	SuspiciousAgentWeight = 25

	// MinHistoryForLocation is how many prefixes a caller needs on record
	// before a new one counts as unusual.
	MinHistoryForLocation = 5
)

// Business hours are 06:00 through 22:59.
const (
	offHoursStart = 6
	offHoursEnd   = 22
)

// Factor names reported in an Assessment.
const (
	FactorBase            = "base"
	FactorRepetition      = "repetition"
	FactorOffHours        = "off_hours"
	FactorMaliciousSource = "malicious_source"
	FactorUnusualLocation = "unusual_location"
	FactorSuspiciousAgent = "suspicious_user_agent"
)

// EnvDevelopment disables the internal-address heuristic.
const EnvDevelopment = "development"

// DefaultSuspiciousAgents are the user-agent fragments typical of
// automation rather than a browser.
var DefaultSuspiciousAgents = []string{
	"bot", "crawler", "spider", "scraper", "curl", "wget", "python", "java",
}

// IPBlockChecker reports whether an address is currently blocked.
type IPBlockChecker interface {
	IsIPBlocked(ip string, now time.Time) bool
}

// Config holds the static scoring tables.
type Config struct {
	Environment      string
	Denylist         []string // addresses or CIDRs
	HighRiskRanges   []string // CIDRs
	PrivateAllowlist []string // internal ranges accepted outside development
	SuspiciousAgents []string
	HistoryCallers   int
}

// Factor is one contribution to a risk score.
type Factor struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// Assessment is the outcome of scoring a draft event.
type Assessment struct {
	Severity  audit.Severity `json:"severity"`
	RiskScore int            `json:"riskScore"`
	Factors   []Factor       `json:"factors"`
}

// Scorer computes severity and risk for draft events.
//
// Score is deterministic for a given draft, instant, location history
// and blocklist state. The only state it changes is the location history,
// and Evaluate leaves even that untouched.
type Scorer struct {
	development bool
	denylist    *IPSet
	highRisk    *IPSet
	allow       *IPSet
	agents      *cache.Matcher
	history     *LocationHistory
	blocks      IPBlockChecker
}

// NewScorer builds a scorer from cfg.
func NewScorer(cfg Config) (*Scorer, error) {
	deny, err := NewIPSet(cfg.Denylist)
	if err != nil {
		return nil, fmt.Errorf("denylist: %w", err)
	}
	highRisk, err := NewIPSet(cfg.HighRiskRanges)
	if err != nil {
		return nil, fmt.Errorf("high risk ranges: %w", err)
	}
	allow, err := NewIPSet(cfg.PrivateAllowlist)
	if err != nil {
		return nil, fmt.Errorf("private allowlist: %w", err)
	}

	agents := cfg.SuspiciousAgents
	if len(agents) == 0 {
		agents = DefaultSuspiciousAgents
	}

	return &Scorer{
		development: cfg.Environment == EnvDevelopment,
		denylist:    deny,
		highRisk:    highRisk,
		allow:       allow,
		agents:      cache.NewKeywordMatcher(FactorSuspiciousAgent, agents...),
		history:     NewLocationHistory(cfg.HistoryCallers),
	}, nil
}

// SetBlockChecker wires the live IP blocklist into the malicious-source
// signal. It must be called before the scorer is shared.
func (s *Scorer) SetBlockChecker(c IPBlockChecker) {
	s.blocks = c
}

// History exposes the per-caller location history.
func (s *Scorer) History() *LocationHistory {
	return s.history
}

// Score assesses d at instant now and records the caller's network prefix
// in the location history. Novelty is judged against the history as it
// was before this event.
func (s *Scorer) Score(d audit.Draft, now time.Time) Assessment {
	a := s.Evaluate(d, now)

	addr, ok := ParseIP(d.Context.IPAddress)
	if ok {
		s.history.Record(callerKey(d.Context), NetworkPrefix(addr))
	}
	return a
}

// Evaluate assesses d without recording anything.
func (s *Scorer) Evaluate(d audit.Draft, now time.Time) Assessment {
	base := BaseScore(d.Kind)
	factors := []Factor{{Name: FactorBase, Weight: base}}
	total := base

	add := func(name string, w int) {
		factors = append(factors, Factor{Name: name, Weight: w})
		total += w
	}

	if n := d.Details.AttemptCount(); n > 1 {
		add(FactorRepetition, repetitionWeight(n))
	}
	if IsOffHours(now) {
		add(FactorOffHours, OffHoursWeight)
	}

	if addr, ok := ParseIP(d.Context.IPAddress); ok {
		if s.isMaliciousSource(addr, d.Context.IPAddress, now) {
			add(FactorMaliciousSource, MaliciousSourceWeight)
		}
		if s.isUnusualLocation(callerKey(d.Context), addr) {
			add(FactorUnusualLocation, UnusualLocationWeight)
		}
	}

	if ua := d.Context.UserAgent; ua != "" && s.agents.Contains(ua) {
		add(FactorSuspiciousAgent, SuspiciousAgentWeight)
	}

	return Assessment{
		Severity:  Classify(d.Kind),
		RiskScore: Clamp(total),
		Factors:   factors,
	}
}

func (s *Scorer) isMaliciousSource(addr netip.Addr, raw string, now time.Time) bool {
	if s.denylist.Contains(addr) {
		return true
	}
	if s.blocks != nil && s.blocks.IsIPBlocked(raw, now) {
		return true
	}
	if !s.development && IsInternal(addr) && !s.allow.Contains(addr) {
		return true
	}
	return false
}

func (s *Scorer) isUnusualLocation(caller string, addr netip.Addr) bool {
	if caller == "" || s.highRisk.Len() == 0 {
		return false
	}
	seen := s.history.Prefixes(caller)
	if len(seen) < MinHistoryForLocation {
		return false
	}
	if slices.Contains(seen, NetworkPrefix(addr)) {
		return false
	}
	return s.highRisk.Contains(addr)
}

// repetitionWeight is min(n*RepetitionStep, RepetitionCap), saturating
// before the multiplication can overflow.
func repetitionWeight(n int) int {
	if n >= RepetitionCap/RepetitionStep {
		return RepetitionCap
	}
	return n * RepetitionStep
}

// IsOffHours reports whether t falls before 06:00 or after 22:59 in t's
// own location.
func IsOffHours(t time.Time) bool {
	h := t.Hour()
	return h < offHoursStart || h > offHoursEnd
}

// Clamp bounds a raw score to [MinScore, MaxScore].
func Clamp(score int) int {
	return max(MinScore, min(score, MaxScore))
}

// callerKey identifies whose location history an event belongs to.
func callerKey(c audit.Context) string {
	if c.UserID != "" {
		return "user:" + c.UserID
	}
	if c.IPAddress != "" {
		return "ip:" + c.IPAddress
	}
	return ""
}
