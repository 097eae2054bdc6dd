package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/lemmareport/pkg/lemmareport/token"
	"github.com/cognicore/lemmareport/pkg/lemmareport/window"
)

func TestQueryFilters(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	s := New(
		token.Record{Lemma: "hund", POS: token.NOUN, Timestamp: now},
		token.Record{Lemma: "gå", POS: token.VERB, Timestamp: now.Add(-48 * time.Hour)},
		token.Record{Lemma: "er", POS: token.AUX},
	)
	ctx := context.Background()

	all, err := s.Query(ctx, window.Range{}, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unbounded query returned %d records", len(all))
	}

	recent, _ := s.Query(ctx, window.Range{From: now.Add(-24 * time.Hour), To: now}, nil)
	if len(recent) != 1 || recent[0].Lemma != "hund" {
		t.Fatalf("bounded query returned %+v", recent)
	}

	verbs, _ := s.Query(ctx, window.Range{}, []string{"verb"})
	if len(verbs) != 1 || verbs[0].Lemma != "gå" {
		t.Fatalf("pos query returned %+v", verbs)
	}
	if s.Queries() != 3 {
		t.Errorf("Queries = %d", s.Queries())
	}
}

func TestFailWith(t *testing.T) {
	s := New()
	boom := errors.New("connection refused")
	s.FailWith(boom)
	if _, err := s.Query(context.Background(), window.Range{}, nil); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
}
