package store

import (
	"context"

	"github.com/cognicore/lemmareport/pkg/lemmareport/token"
	"github.com/cognicore/lemmareport/pkg/lemmareport/window"
)

// Source is the read side the report pipeline needs: token records within a
// time range, restricted to a set of POS tags.
type Source interface {
	// Query returns records whose timestamp lies in r (open sides are
	// unbounded) and whose POS is in pos. An empty pos slice means no filter.
	Query(ctx context.Context, r window.Range, pos []string) ([]token.Record, error)
	Close() error
}

// Writer is implemented by stores that can ingest records (used by the
// import command and tests).
type Writer interface {
	InsertTokens(ctx context.Context, records []token.Record) error
}

// Store is a token source that also accepts writes.
type Store interface {
	Source
	Writer
}
