package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cognicore/lemmareport/internal/logging"
	"github.com/cognicore/lemmareport/pkg/lemmareport/config"
)

// defaultConfigFile is read when --config is not given and the file exists.
const defaultConfigFile = "lemma-report.yaml"

// app carries state shared by the subcommands of one invocation.
type app struct {
	cfgFile string
	envFile string
	verbose bool
	noColor bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "lemma-report",
		Short: "Lemma frequency report generator",
		Long: `lemma-report reads tokenized, lemmatized words from a token store,
ranks lemmas per part-of-speech category and time window, and publishes
the result as an HTML page with tables and bar charts.

Example usage:
  lemma-report run                       # Build and publish the report
  lemma-report preview -o /tmp/r.html    # Render without publishing
  lemma-report import tokens.jsonl       # Load tokenizer output into SQLite
  lemma-report schema                    # Print the config JSON schema`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is "+defaultConfigFile+" when present)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the config")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newRunCmd(a),
		newPreviewCmd(a),
		newImportCmd(a),
		newSchemaCmd(),
	)
	return root
}

// initConfig loads the dotenv file, the config file and the environment,
// then sets up logging.
func (a *app) initConfig() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", a.envFile, err)
		}
	}

	path := a.cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level := logging.ParseLevel(cfg.Logging.Level)
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = logging.Init(cfg.Logging.Format, level)
	if a.logger.Enabled(context.Background(), slog.LevelDebug) {
		stops, err := cfg.Stops()
		if err != nil {
			return err
		}
		a.logger.Debug("configuration loaded",
			"config", path,
			"driver", cfg.Source.Driver,
			"categories", len(cfg.Report.Categories),
			"windows", len(cfg.Report.Windows),
			"stop_terms", stops.All(),
		)
	}
	return nil
}
