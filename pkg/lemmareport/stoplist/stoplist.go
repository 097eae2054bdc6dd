package stoplist

import (
	"sort"
	"strings"
	"unicode"
)

// Manager decides which lemmas are excluded from frequency counts.
type Manager struct {
	stops       map[string]struct{}
	punctuation bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithPunctuation makes the manager treat lemmas that contain no letter or
// digit (".", "--", "«") as stop lemmas.
func WithPunctuation() Option {
	return func(m *Manager) { m.punctuation = true }
}

// NewManager creates a new stoplist manager. Terms are compared case-insensitively.
func NewManager(initialStops []string, opts ...Option) *Manager {
	m := &Manager{stops: make(map[string]struct{}, len(initialStops))}
	for _, s := range initialStops {
		m.Add(s)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsStop checks if a lemma is a stop lemma
func (m *Manager) IsStop(lemma string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.stops[strings.ToLower(strings.TrimSpace(lemma))]; ok {
		return true
	}
	return m.punctuation && isPunctuation(lemma)
}

// Add adds a term to the stoplist
func (m *Manager) Add(term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return
	}
	m.stops[term] = struct{}{}
}

// All returns all configured terms in sorted order
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

func isPunctuation(lemma string) bool {
	for _, r := range lemma {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
