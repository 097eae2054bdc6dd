package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
)

const testNow = "2024-05-10T12:00:00Z"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.Execute()
	return buf.String(), err
}

type fixture struct {
	dir    string
	config string
	db     string
	output string
	errLog string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		config: filepath.Join(dir, "lemma-report.yaml"),
		db:     filepath.Join(dir, "tokens.db"),
		output: filepath.Join(dir, "site", "index.html"),
		errLog: filepath.Join(dir, "error_log.txt"),
	}
	cfg := fmt.Sprintf(`source:
  driver: sqlite
  dsn: %s
report:
  title: Test report
  watermark: example.org
publish:
  output: %s
logging:
  level: error
  error_log: %s
`, f.db, f.output, f.errLog)
	if err := os.WriteFile(f.config, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f fixture) importTokens(t *testing.T) {
	t.Helper()
	lines := strings.Join([]string{
		`{"lemma":"gå","pos":"VERB","token_text":"går","timestamp":"2024-05-10T10:00:00Z"}`,
		`{"lemma":"gå","pos":"VERB","token_text":"gik","timestamp":"2024-05-01T10:00:00Z"}`,
		`{"lemma":"være","pos":"AUX","token_text":"er","timestamp":"2024-05-10T11:00:00Z"}`,
		`{"lemma":"hund","pos":"NOUN","token_text":"hunden","timestamp":"2024-05-09T20:00:00Z"}`,
	}, "\n")
	path := filepath.Join(f.dir, "tokens.jsonl")
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "--config", f.config, "import", path)
	if err != nil {
		t.Fatalf("import failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "imported 4 tokens") {
		t.Fatalf("unexpected import output:\n%s", out)
	}
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("--help failed: %v", err)
	}
	for _, sub := range []string{"run", "preview", "import", "schema"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing %q", sub)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := execute(t, "nonexistent-command"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "--config", "/nonexistent.yaml", "schema")
	if err != nil {
		t.Fatalf("schema failed: %v", err)
	}
	if !strings.Contains(out, `"chart_limit"`) {
		t.Errorf("schema output missing chart_limit:\n%s", out)
	}
}

func TestImportAndRun(t *testing.T) {
	f := newFixture(t)
	f.importTokens(t)

	out, err := execute(t, "--config", f.config, "run", "--now", testNow)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "VERB_AUX") || !strings.Contains(out, "[OK] run ") {
		t.Errorf("unexpected run output:\n%s", out)
	}

	data, err := os.ReadFile(f.output)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	html := string(data)
	for _, want := range []string{"<!DOCTYPE html>", "Test report", "gå", "hunden (1)", "10-05-2024 12:00:00"} {
		if !strings.Contains(html, want) {
			t.Errorf("published page missing %q", want)
		}
	}
}

func TestRunWithTemplateAndHook(t *testing.T) {
	f := newFixture(t)
	f.importTokens(t)
	tmpl := filepath.Join(f.dir, "template.html")
	os.WriteFile(tmpl, []byte("<html><body><h1>Site</h1><!--DYNAMIC_SECTION_CHART--></body></html>"), 0644)
	cfgData, _ := os.ReadFile(f.config)
	cfgData = bytes.Replace(cfgData, []byte("publish:\n"), []byte(fmt.Sprintf(
		"publish:\n  template: %s\n  hook: [sh, -c, \"touch hook-ran\"]\n", tmpl)), 1)
	os.WriteFile(f.config, cfgData, 0644)

	if out, err := execute(t, "--config", f.config, "run", "--now", testNow, "-q"); err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	data, _ := os.ReadFile(f.output)
	if !strings.HasPrefix(string(data), "<html><body><h1>Site</h1><div class=\"lemma-report\"") {
		t.Errorf("fragment not injected:\n%.120s", data)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "site", "hook-ran")); err != nil {
		t.Errorf("hook did not run: %v", err)
	}
}

func TestRunMissingDatabaseFails(t *testing.T) {
	f := newFixture(t)

	out, err := execute(t, "--config", f.config, "run", "--now", testNow)
	if err == nil {
		t.Fatalf("expected failure for missing database:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR] run ") {
		t.Errorf("missing failure status line:\n%s", out)
	}
	if _, err := os.Stat(f.output); !os.IsNotExist(err) {
		t.Error("nothing may be published after a failure")
	}
	data, err := os.ReadFile(f.errLog)
	if err != nil {
		t.Fatalf("error log not written: %v", err)
	}
	if !strings.Contains(string(data), `"kind":"source_unavailable"`) {
		t.Errorf("unexpected error log:\n%s", data)
	}
}

func TestPreviewFragmentToStdout(t *testing.T) {
	f := newFixture(t)
	f.importTokens(t)

	out, err := execute(t, "--config", f.config, "preview", "--now", testNow, "--fragment")
	if err != nil {
		t.Fatalf("preview failed: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, `<div class="lemma-report"`) {
		t.Errorf("unexpected preview output:\n%.120s", out)
	}
	if _, err := os.Stat(f.output); !os.IsNotExist(err) {
		t.Error("preview must not publish")
	}
}

func TestPreviewMissingDatabaseIsSourceUnavailable(t *testing.T) {
	f := newFixture(t)

	_, err := execute(t, "--config", f.config, "preview", "--now", testNow)
	if !errors.Is(err, internalerr.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if _, err := os.Stat(f.db); !os.IsNotExist(err) {
		t.Error("preview must not create the database")
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	f := newFixture(t)
	os.WriteFile(f.config, []byte("report:\n  limit: 0\n"), 0644)
	if _, err := execute(t, "--config", f.config, "run"); err == nil {
		t.Fatal("expected invalid config to fail")
	}
}

func TestReferenceTime(t *testing.T) {
	if _, err := referenceTime("yesterday"); err == nil {
		t.Error("expected parse error")
	}
	got, err := referenceTime(testNow)
	if err != nil || got.Format("2006-01-02") != "2024-05-10" {
		t.Errorf("referenceTime = %v, %v", got, err)
	}
}
