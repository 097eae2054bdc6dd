// Package token defines the raw input unit of the report: one tokenized word
// occurrence with its lemma, part-of-speech tag and timestamp.
package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
)

// Universal POS tags seen in the corpus.
const (
	NOUN  = "NOUN"
	VERB  = "VERB"
	AUX   = "AUX"
	ADP   = "ADP"
	ADV   = "ADV"
	ADJ   = "ADJ"
	PRON  = "PRON"
	PROPN = "PROPN"
	PUNCT = "PUNCT"
)

// Record is a single token occurrence supplied by a token source.
type Record struct {
	Lemma     string
	POS       string
	Surface   string
	Timestamp time.Time
}

// Validate checks the fields every downstream stage depends on.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.Lemma) == "":
		return fmt.Errorf("lemma: %w", internalerr.ErrMissingField)
	case strings.TrimSpace(r.POS) == "":
		return fmt.Errorf("pos for lemma %q: %w", r.Lemma, internalerr.ErrMissingField)
	case r.Timestamp.IsZero():
		return fmt.Errorf("timestamp for lemma %q: %w", r.Lemma, internalerr.ErrMissingField)
	}
	return nil
}

// NormalizePOS upper-cases and trims a tag so configuration and stored data
// compare equal.
func NormalizePOS(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}
