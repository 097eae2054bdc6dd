package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/lemmareport/pkg/lemmareport/token"
	"github.com/cognicore/lemmareport/pkg/lemmareport/window"
)

// Store is an in-memory token source for tests.
type Store struct {
	mu      sync.RWMutex
	records []token.Record
	err     error
	queries int
}

// New creates a store seeded with records.
func New(records ...token.Record) *Store {
	s := &Store{}
	s.records = append(s.records, records...)
	return s
}

// Close implements store.Source.
func (s *Store) Close() error { return nil }

// FailWith makes every subsequent Query return err.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Queries reports how many queries were issued.
func (s *Store) Queries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queries
}

// InsertTokens appends records.
func (s *Store) InsertTokens(ctx context.Context, records []token.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

// Query returns a copy of the matching records in insertion order.
func (s *Store) Query(ctx context.Context, r window.Range, pos []string) ([]token.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	if s.err != nil {
		return nil, s.err
	}

	allow := make(map[string]struct{}, len(pos))
	for _, p := range pos {
		allow[token.NormalizePOS(p)] = struct{}{}
	}

	var out []token.Record
	for _, rec := range s.records {
		if len(allow) > 0 {
			if _, ok := allow[token.NormalizePOS(rec.POS)]; !ok {
				continue
			}
		}
		// Records without a timestamp only show up in unbounded queries,
		// matching how SQL comparisons treat NULL.
		if rec.Timestamp.IsZero() {
			if r.Unbounded() {
				out = append(out, rec)
			}
			continue
		}
		if r.Contains(rec.Timestamp) {
			out = append(out, rec)
		}
	}
	return out, nil
}
