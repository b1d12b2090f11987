// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package scoring

import (
	"fmt"
	"net/netip"
	"strings"
)

// IPSet is a static set of addresses and CIDR ranges.
// Exact addresses are looked up in a map; ranges are scanned linearly,
// which is fine for the tens of entries these tables hold.
type IPSet struct {
	addrs    map[netip.Addr]struct{}
	prefixes []netip.Prefix
}

// NewIPSet parses entries, each either a single address or a CIDR.
func NewIPSet(entries []string) (*IPSet, error) {
	s := &IPSet{addrs: make(map[netip.Addr]struct{})}
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid CIDR %q: %w", entry, err)
			}
			s.prefixes = append(s.prefixes, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", entry, err)
		}
		s.addrs[a.Unmap()] = struct{}{}
	}
	return s, nil
}

// Contains reports whether addr is in the set.
func (s *IPSet) Contains(addr netip.Addr) bool {
	if s == nil || !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	if _, ok := s.addrs[addr]; ok {
		return true
	}
	for _, p := range s.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (s *IPSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.addrs) + len(s.prefixes)
}

// ParseIP parses a caller-supplied source address. Zones and surrounding
// whitespace are tolerated; anything else unparsable yields ok=false.
func ParseIP(raw string) (netip.Addr, bool) {
	a, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return netip.Addr{}, false
	}
	return a.WithZone("").Unmap(), true
}

// IsInternal reports whether addr is private, loopback or link-local.
func IsInternal(addr netip.Addr) bool {
	return addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast()
}

// NetworkPrefix returns the coarse network an address belongs to: the
// first two octets for IPv4 ("203.0") and the /32 for IPv6.
func NetworkPrefix(addr netip.Addr) string {
	if addr.Is4() {
		b := addr.As4()
		return fmt.Sprintf("%d.%d", b[0], b[1])
	}
	p, err := addr.Prefix(32)
	if err != nil {
		return ""
	}
	return p.String()
}
