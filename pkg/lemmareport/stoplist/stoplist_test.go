package stoplist

import (
	"reflect"
	"testing"
)

func TestManagerTerms(t *testing.T) {
	m := NewManager([]string{"Og", " i ", ""})

	if !m.IsStop("og") || !m.IsStop("OG") {
		t.Error("terms should match case-insensitively")
	}
	if !m.IsStop("i") {
		t.Error("terms should be trimmed")
	}
	if m.IsStop("hund") {
		t.Error("hund is not a stop term")
	}

	m.Add("at")
	if got, want := m.All(), []string{"at", "i", "og"}; !reflect.DeepEqual(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}
}

func TestManagerPunctuation(t *testing.T) {
	plain := NewManager(nil)
	if plain.IsStop(".") {
		t.Error("punctuation filtering is opt-in")
	}

	m := NewManager(nil, WithPunctuation())
	for _, lemma := range []string{".", ",", "--", "«»", "!?"} {
		if !m.IsStop(lemma) {
			t.Errorf("%q should be treated as punctuation", lemma)
		}
	}
	for _, lemma := range []string{"gå", "2024", "e-mail"} {
		if m.IsStop(lemma) {
			t.Errorf("%q should not be treated as punctuation", lemma)
		}
	}
}

func TestNilManager(t *testing.T) {
	var m *Manager
	if m.IsStop("anything") {
		t.Error("nil manager stops nothing")
	}
}
