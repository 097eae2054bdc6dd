package token

import (
	"errors"
	"testing"
	"time"

	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
)

func TestRecordValidate(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"complete", Record{Lemma: "gå", POS: VERB, Surface: "går", Timestamp: ts}, false},
		{"no surface is fine", Record{Lemma: "gå", POS: VERB, Timestamp: ts}, false},
		{"empty lemma", Record{POS: VERB, Timestamp: ts}, true},
		{"blank pos", Record{Lemma: "gå", POS: "  ", Timestamp: ts}, true},
		{"zero timestamp", Record{Lemma: "gå", POS: VERB}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rec.Validate()
			if tc.wantErr {
				if !errors.Is(err, internalerr.ErrMissingField) {
					t.Fatalf("expected ErrMissingField, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNormalizePOS(t *testing.T) {
	if got := NormalizePOS(" verb "); got != VERB {
		t.Errorf("NormalizePOS = %q, want %q", got, VERB)
	}
}
