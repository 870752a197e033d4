package lookup

import (
	"slices"
	"strings"
	"sync"
)

// SearchTerm is a normalized (trimmed, uppercased) callsign or DXCC identifier.
type SearchTerm string

// NormalizeTerms turns raw user input into an ordered set of search terms.
// Empty entries are dropped and duplicates collapse into one.
func NormalizeTerms(raw []string) []SearchTerm {
	seen := map[SearchTerm]struct{}{}
	out := make([]SearchTerm, 0, len(raw))
	for _, r := range raw {
		term := SearchTerm(strings.ToUpper(strings.TrimSpace(r)))
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	slices.Sort(out)
	return out
}

// namespace separates terms that name different things, a callsign and a
// DXCC entity can share the same text.
type namespace string

const (
	namespaceCallsign namespace = "callsign"
	namespaceDXCC     namespace = "dxcc"
)

// InvalidTermSet holds terms that produced "not found" during the lifetime
// of an Orchestrator. It is never persisted.
type InvalidTermSet struct {
	mutex sync.Mutex
	terms map[namespace]map[SearchTerm]struct{}
}

func newInvalidTermSet() *InvalidTermSet {
	return &InvalidTermSet{terms: map[namespace]map[SearchTerm]struct{}{}}
}

func (s *InvalidTermSet) contains(ns namespace, term SearchTerm) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.terms[ns][term]
	return ok
}

// add returns false if the term was already present.
func (s *InvalidTermSet) add(ns namespace, term SearchTerm) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	set, ok := s.terms[ns]
	if !ok {
		set = map[SearchTerm]struct{}{}
		s.terms[ns] = set
	}
	if _, ok := set[term]; ok {
		return false
	}
	set[term] = struct{}{}
	return true
}

// Len returns the number of invalid terms across all namespaces.
func (s *InvalidTermSet) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	n := 0
	for _, set := range s.terms {
		n += len(set)
	}
	return n
}

// ContainsCallsign reports whether a callsign (or bio) term is known to be invalid.
func (s *InvalidTermSet) ContainsCallsign(term SearchTerm) bool {
	return s.contains(namespaceCallsign, term)
}

// ContainsDXCC reports whether a DXCC term is known to be invalid.
func (s *InvalidTermSet) ContainsDXCC(term SearchTerm) bool {
	return s.contains(namespaceDXCC, term)
}
