package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
	"github.com/cognicore/lemmareport/pkg/lemmareport/store"
	"github.com/cognicore/lemmareport/pkg/lemmareport/token"
	"github.com/cognicore/lemmareport/pkg/lemmareport/window"
)

// DefaultTable is the table the tokenizer writes to.
const DefaultTable = "tokens"

// boundLayout is a format julianday() parses unambiguously.
const boundLayout = "2006-01-02 15:04:05.000"

const maxZoneOffset = 14 * time.Hour

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// sqliteStore implements store.Store using SQLite
type sqliteStore struct {
	db       *sql.DB
	table    string
	existing bool
	loc      *time.Location
}

// Option configures the SQLite store.
type Option func(*sqliteStore)

// WithTable reads tokens from a table other than DefaultTable.
// An empty name keeps the default.
func WithTable(name string) Option {
	return func(s *sqliteStore) {
		if name != "" {
			s.table = name
		}
	}
}

// WithExisting opens the store read-only. The database file and the token
// table must already exist; nothing is created or altered.
func WithExisting() Option {
	return func(s *sqliteStore) { s.existing = true }
}

// WithLocation sets the zone for stored timestamps that carry no offset.
func WithLocation(loc *time.Location) Option {
	return func(s *sqliteStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// OpenSQLite opens a SQLite database. Unless WithExisting is given it enables
// WAL mode and creates the token table when missing.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (store.Store, error) {
	s := &sqliteStore{table: DefaultTable, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	if !identPattern.MatchString(s.table) {
		return nil, fmt.Errorf("table name %q: %w", s.table, internalerr.ErrInvalidConfig)
	}

	if s.existing {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("open %s: %w: %w", path, internalerr.ErrSourceUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if s.existing {
		if err := requireTable(ctx, db, s.table); err != nil {
			db.Close()
			return nil, err
		}
		s.db = db
		return s, nil
	}

	// Enable WAL mode so the tokenizer can keep writing while we read
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db, s.table); err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

// requireTable fails with ErrSourceUnavailable when table is not in the schema.
func requireTable(ctx context.Context, db *sql.DB, table string) error {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE`, table).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspect schema: %w: %w", internalerr.ErrSourceUnavailable, err)
	}
	if n == 0 {
		return fmt.Errorf("table %q not found: %w", table, internalerr.ErrSourceUnavailable)
	}
	return nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates the token table if it doesn't exist
func initSchema(ctx context.Context, db *sql.DB, table string) error {
	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	lemma TEXT,
	pos TEXT,
	token_text TEXT,
	timestamp TEXT
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_pos ON %[1]s(pos);
CREATE INDEX IF NOT EXISTS idx_%[1]s_timestamp ON %[1]s(timestamp);
`, table)

	_, err := db.ExecContext(ctx, schema)
	return err
}

// Query returns token records in insertion order.
func (s *sqliteStore) Query(ctx context.Context, r window.Range, pos []string) ([]token.Record, error) {
	var (
		where []string
		args  []interface{}
	)
	if len(pos) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(pos)), ",")
		where = append(where, fmt.Sprintf("UPPER(pos) IN (%s)", placeholders))
		for _, p := range pos {
			args = append(args, token.NormalizePOS(p))
		}
	}
	// julianday reads zone-less values as UTC. Under another zone the SQL
	// bounds are widened by the largest UTC offset and the exact window is
	// applied by the aggregator.
	var slack time.Duration
	if s.loc != time.UTC {
		slack = maxZoneOffset
	}
	if !r.From.IsZero() {
		where = append(where, "julianday(timestamp) >= julianday(?)")
		args = append(args, r.From.Add(-slack).UTC().Format(boundLayout))
	}
	if !r.To.IsZero() {
		where = append(where, "julianday(timestamp) <= julianday(?)")
		args = append(args, r.To.Add(slack).UTC().Format(boundLayout))
	}

	query := fmt.Sprintf(`SELECT lemma, pos, token_text, timestamp FROM %s`, s.table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id;"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []token.Record
	for rows.Next() {
		var lemma, tag, surface, ts sql.NullString
		if err := rows.Scan(&lemma, &tag, &surface, &ts); err != nil {
			return nil, err
		}
		rec := token.Record{Lemma: lemma.String, POS: tag.String, Surface: surface.String}
		if ts.Valid && ts.String != "" {
			parsed, err := ParseTimestampIn(ts.String, s.loc)
			if err != nil {
				return nil, fmt.Errorf("lemma %q: %w", rec.Lemma, err)
			}
			rec.Timestamp = parsed
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// InsertTokens appends records in a single transaction.
func (s *sqliteStore) InsertTokens(ctx context.Context, records []token.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (lemma, pos, token_text, timestamp) VALUES (?, ?, ?, ?)`, s.table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		var ts interface{}
		if !rec.Timestamp.IsZero() {
			ts = rec.Timestamp.UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx, rec.Lemma, token.NormalizePOS(rec.POS), rec.Surface, ts); err != nil {
			return err
		}
	}
	return tx.Commit()
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp accepts the layouts the tokenizer has written over time.
// Values without a zone are taken as UTC.
func ParseTimestamp(v string) (time.Time, error) {
	return ParseTimestampIn(v, time.UTC)
}

// ParseTimestampIn is ParseTimestamp with zone-less values read in loc.
func ParseTimestampIn(v string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	v = strings.TrimSpace(v)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q: %w", v, internalerr.ErrMissingField)
}
