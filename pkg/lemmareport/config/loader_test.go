package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/lemmareport/pkg/lemmareport/analytics"
)

func TestLoadStoplist(t *testing.T) {
	// Create temp file
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "stoplist.yaml")

	content := `terms:
  - og
  - i
  - at
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	sl, err := LoadStoplist(path)
	if err != nil {
		t.Fatalf("Failed to load stoplist: %v", err)
	}

	if len(sl.Terms) != 3 {
		t.Errorf("Expected 3 terms, got %d", len(sl.Terms))
	}

	expected := map[string]bool{"og": true, "i": true, "at": true}
	for _, term := range sl.Terms {
		if !expected[term] {
			t.Errorf("Unexpected term: %s", term)
		}
	}
}

func TestStopsMergesSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stoplist.yaml")
	if err := os.WriteFile(path, []byte("terms: [og]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	cfg.Report.StopTerms = []string{"være"}
	cfg.Report.StoplistPath = path
	cfg.Report.IgnorePunctuation = true

	stops, err := cfg.Stops()
	if err != nil {
		t.Fatalf("Stops: %v", err)
	}
	for _, lemma := range []string{"og", "være", ",", "..."} {
		if !stops.IsStop(lemma) {
			t.Errorf("%q should be a stop lemma", lemma)
		}
	}
	if stops.IsStop("hund") {
		t.Error("hund should not be a stop lemma")
	}
}

func TestStopsNonExistentFile(t *testing.T) {
	cfg := Default()
	cfg.Report.StoplistPath = "/nonexistent/stoplist.yaml"
	if _, err := cfg.Stops(); err == nil {
		t.Error("Should error on nonexistent stoplist")
	}
}

func TestAssemblerOptions(t *testing.T) {
	cfg := Default()
	cfg.Report.Dimensions = []string{analytics.DimLemma, analytics.DimPOS}
	cfg.Report.Watermark = "example.org"

	opts, err := cfg.AssemblerOptions(nil)
	if err != nil {
		t.Fatalf("AssemblerOptions: %v", err)
	}
	if opts.Dimensions.Surface {
		t.Error("surface dimension should be off")
	}
	if opts.Limit != 50 || opts.ChartLimit != 15 {
		t.Errorf("limits = %d/%d", opts.Limit, opts.ChartLimit)
	}
	if len(opts.Categories) != 4 || len(opts.Windows) != 3 {
		t.Errorf("got %d categories, %d windows", len(opts.Categories), len(opts.Windows))
	}
	if opts.Watermark != "example.org" || opts.Stops == nil {
		t.Errorf("unexpected options %+v", opts)
	}
}
