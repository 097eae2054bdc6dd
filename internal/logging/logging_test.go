package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		got := ParseLevel(tt.input)
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "json", slog.LevelInfo).Info("test message", "run_id", "01ABC")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v\noutput: %s", err, buf.String())
	}
	if m["msg"] != "test message" || m["run_id"] != "01ABC" {
		t.Errorf("unexpected record %v", m)
	}
}

func TestNewTextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "text", slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered: %s", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected text output containing key=value, got: %s", out)
	}
}

func TestErrorLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_log.txt")

	for i, cause := range []error{
		fmt.Errorf("query: %w", internalerr.ErrSourceUnavailable),
		fmt.Errorf("record 3: %w", internalerr.ErrMissingField),
	} {
		l, err := OpenErrorLog(path)
		if err != nil {
			t.Fatalf("OpenErrorLog: %v", err)
		}
		l.Record(context.Background(), fmt.Sprintf("run-%d", i), cause)
		if err := l.Close(); err != nil {
			t.Fatal(err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var kinds []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line is not JSON: %s", sc.Text())
		}
		if m["time"] == nil || m["err"] == nil {
			t.Errorf("diagnostic missing fields: %v", m)
		}
		kinds = append(kinds, m["kind"].(string))
	}
	if len(kinds) != 2 || kinds[0] != "source_unavailable" || kinds[1] != "missing_field" {
		t.Fatalf("kinds = %v", kinds)
	}
}

func TestNilErrorLog(t *testing.T) {
	l, err := OpenErrorLog("")
	if err != nil || l != nil {
		t.Fatalf("empty path should give nil log, got %v, %v", l, err)
	}
	l.Record(context.Background(), "run", fmt.Errorf("boom"))
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
}
