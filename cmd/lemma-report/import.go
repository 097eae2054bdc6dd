package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/lemmareport/internal/tokenfile"
	"github.com/cognicore/lemmareport/pkg/lemmareport/config"
	"github.com/cognicore/lemmareport/pkg/lemmareport/store/sqlite"
)

func newImportCmd(a *app) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Load JSONL tokenizer output into the SQLite store",
		Long: `Load one or more JSON Lines files into the SQLite token table. Each line
is an object with lemma, pos, token_text and timestamp. Malformed lines are
skipped with a warning. The database is created when missing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if dbPath == "" {
				if cfg.Source.Driver != config.DriverSQLite {
					return fmt.Errorf("import writes to SQLite; pass --db when source.driver is %s", cfg.Source.Driver)
				}
				dbPath = cfg.Source.DSN
			}

			ctx := cmd.Context()
			st, err := sqlite.OpenSQLite(ctx, dbPath, sqlite.WithTable(cfg.Source.Table))
			if err != nil {
				return err
			}
			defer st.Close()

			p := newPrinter(cmd.OutOrStdout(), a.noColor)
			total := 0
			for _, path := range args {
				records, err := tokenfile.LoadFromJSONL(path, a.logger)
				if err != nil {
					return err
				}
				if err := st.InsertTokens(ctx, records); err != nil {
					return fmt.Errorf("insert %s: %w", path, err)
				}
				a.logger.Info("imported tokens", "file", path, "records", len(records))
				total += len(records)
			}
			p.success("imported %d tokens into %s", total, dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database (default: source.dsn)")
	return cmd
}
