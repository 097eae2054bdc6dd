// Package tokenfile reads tokenizer output in JSON Lines form, one token per
// line, for loading into a token store.
package tokenfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cognicore/lemmareport/pkg/lemmareport/store/sqlite"
	"github.com/cognicore/lemmareport/pkg/lemmareport/token"
)

// Item is one line of a token file.
type Item struct {
	Lemma     string `json:"lemma"`
	POS       string `json:"pos"`
	TokenText string `json:"token_text"`
	Timestamp string `json:"timestamp"`
}

// Record converts the item, parsing its timestamp.
func (it Item) Record() (token.Record, error) {
	rec := token.Record{
		Lemma:   strings.TrimSpace(it.Lemma),
		POS:     token.NormalizePOS(it.POS),
		Surface: it.TokenText,
	}
	if it.Timestamp != "" {
		ts, err := sqlite.ParseTimestamp(it.Timestamp)
		if err != nil {
			return token.Record{}, err
		}
		rec.Timestamp = ts
	}
	if err := rec.Validate(); err != nil {
		return token.Record{}, err
	}
	return rec, nil
}

// LoadFromJSONL loads records from a JSONL file. Malformed or incomplete
// lines are skipped with a warning.
func LoadFromJSONL(path string, logger *slog.Logger) ([]token.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, path, logger)
}

// Read is LoadFromJSONL over any reader; name is used in messages.
func Read(r io.Reader, name string, logger *slog.Logger) ([]token.Record, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var records []token.Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			logger.Warn("skipping malformed line", "file", name, "line", line, "err", err)
			continue
		}
		rec, err := item.Record()
		if err != nil {
			logger.Warn("skipping incomplete token", "file", name, "line", line, "err", err)
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", name, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no valid tokens found in %s", name)
	}

	return records, nil
}
