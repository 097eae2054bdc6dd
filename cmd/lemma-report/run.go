package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/lemmareport/internal/logging"
	"github.com/cognicore/lemmareport/internal/metrics"
	"github.com/cognicore/lemmareport/pkg/lemmareport/job"
	"github.com/cognicore/lemmareport/pkg/lemmareport/publish"
	"github.com/cognicore/lemmareport/pkg/lemmareport/render"
	"github.com/cognicore/lemmareport/pkg/lemmareport/store"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		nowFlag string
		noHook  bool
		quiet   bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the report and publish it",
		Long: `Build the report from the configured token store, render it and
publish it to the configured output, then run the post-publish hook.

A failure in any step aborts the run before anything is written and is
appended to the error log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := referenceTime(nowFlag)
			if err != nil {
				return err
			}
			cfg := a.cfg
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			renderer, err := render.New(render.WithLocation(loc))
			if err != nil {
				return err
			}
			errLog, err := logging.OpenErrorLog(cfg.Logging.ErrorLog)
			if err != nil {
				return err
			}
			defer errLog.Close()

			pub := &publish.FilePublisher{
				TemplatePath: cfg.Publish.Template,
				OutputPath:   cfg.Publish.Output,
				Placeholder:  cfg.Publish.Placeholder,
				Logger:       a.logger,
			}
			if !noHook {
				pub.Hook = cfg.Publish.Hook
			}

			m := metrics.New()
			ctx := cmd.Context()
			res, runErr := job.Run(ctx, job.Deps{
				OpenSource: func(ctx context.Context) (store.Source, error) {
					return openSource(ctx, cfg.Source)
				},
				Publisher: pub,
				Renderer:  renderer,
				Metrics:   m,
				ErrorLog:  errLog,
				Logger:    a.logger,
			}, cfg, now)

			if err := m.Push(ctx, cfg.Metrics.Pushgateway, cfg.Metrics.Job); err != nil {
				a.logger.Warn("metrics push failed", "err", err)
			}

			p := newPrinter(cmd.OutOrStdout(), a.noColor)
			if runErr != nil {
				p.failure("run %s failed: %v", res.RunID, runErr)
				return runErr
			}
			if !quiet {
				writeSummary(cmd.OutOrStdout(), res.Document)
			}
			p.success("run %s published %s (%d sections, %d bytes, %s)",
				res.RunID, cfg.Publish.Output, res.Sections, res.Bytes, res.Duration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVar(&nowFlag, "now", "", "reference time for the windows (RFC 3339, default current time)")
	cmd.Flags().BoolVar(&noHook, "no-hook", false, "skip the post-publish hook")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the section summary")
	return cmd
}

// referenceTime parses --now or returns the current time.
func referenceTime(v string) (time.Time, error) {
	if v == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now: %w", err)
	}
	return t, nil
}
