// Package postgres reads token records from a PostgreSQL table with pgx.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
	"github.com/cognicore/lemmareport/pkg/lemmareport/store"
	"github.com/cognicore/lemmareport/pkg/lemmareport/token"
	"github.com/cognicore/lemmareport/pkg/lemmareport/window"
)

// DefaultTable matches the SQLite store.
const DefaultTable = "tokens"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Pool is the subset of *pgxpool.Pool the source uses. pgxmock pools satisfy it.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// Source is a read-only token source backed by PostgreSQL.
type Source struct {
	pool  Pool
	table string
}

var _ store.Source = (*Source)(nil)

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn, table string) (*Source, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	src, err := New(pool, table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return src, nil
}

// New wraps an existing pool. An empty table selects DefaultTable.
func New(pool Pool, table string) (*Source, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("table name %q: %w", table, internalerr.ErrInvalidConfig)
	}
	return &Source{pool: pool, table: table}, nil
}

// Close releases the pool.
func (s *Source) Close() error {
	s.pool.Close()
	return nil
}

// Query implements store.Source.
func (s *Source) Query(ctx context.Context, r window.Range, pos []string) ([]token.Record, error) {
	var (
		where []string
		args  []any
	)
	if len(pos) > 0 {
		tags := make([]string, len(pos))
		for i, p := range pos {
			tags[i] = token.NormalizePOS(p)
		}
		args = append(args, tags)
		where = append(where, fmt.Sprintf("UPPER(pos) = ANY($%d)", len(args)))
	}
	if !r.From.IsZero() {
		args = append(args, r.From.UTC())
		where = append(where, fmt.Sprintf(`"timestamp" >= $%d`, len(args)))
	}
	if !r.To.IsZero() {
		args = append(args, r.To.UTC())
		where = append(where, fmt.Sprintf(`"timestamp" <= $%d`, len(args)))
	}

	query := fmt.Sprintf(`SELECT COALESCE(lemma, ''), COALESCE(pos, ''), COALESCE(token_text, ''), "timestamp" FROM %s`, s.table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []token.Record
	for rows.Next() {
		var (
			rec token.Record
			ts  *time.Time
		)
		if err := rows.Scan(&rec.Lemma, &rec.POS, &rec.Surface, &ts); err != nil {
			return nil, err
		}
		if ts != nil {
			rec.Timestamp = ts.UTC()
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
