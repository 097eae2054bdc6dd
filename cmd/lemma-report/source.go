package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cognicore/lemmareport/pkg/lemmareport/config"
	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
	"github.com/cognicore/lemmareport/pkg/lemmareport/store"
	"github.com/cognicore/lemmareport/pkg/lemmareport/store/postgres"
	"github.com/cognicore/lemmareport/pkg/lemmareport/store/sqlite"
)

// openSource connects to the configured token store. A SQLite file and its
// token table must already exist; the report never writes to the source.
func openSource(ctx context.Context, src config.Source) (store.Source, error) {
	switch src.Driver {
	case config.DriverSQLite:
		loc := time.UTC
		if src.Timezone != "" {
			l, err := time.LoadLocation(src.Timezone)
			if err != nil {
				return nil, fmt.Errorf("source.timezone: %w: %w", internalerr.ErrInvalidConfig, err)
			}
			loc = l
		}
		return sqlite.OpenSQLite(ctx, src.DSN,
			sqlite.WithTable(src.Table), sqlite.WithLocation(loc), sqlite.WithExisting())
	case config.DriverPostgres:
		pg, err := postgres.Open(ctx, src.DSN, src.Table)
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown source driver %q: %w", src.Driver, internalerr.ErrInvalidConfig)
	}
}
