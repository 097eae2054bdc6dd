package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
	"github.com/cognicore/lemmareport/pkg/lemmareport/job"
	"github.com/cognicore/lemmareport/pkg/lemmareport/publish"
	"github.com/cognicore/lemmareport/pkg/lemmareport/render"
)

func newPreviewCmd(a *app) *cobra.Command {
	var (
		nowFlag  string
		output   string
		fragment bool
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the report without publishing",
		Long: `Render the report to stdout or a file. The publish template, hook,
error log and metrics are not touched.`,
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

			ctx := cmd.Context()
			src, err := openSource(ctx, cfg.Source)
			if err != nil {
				return fmt.Errorf("open source: %w: %w", internalerr.ErrSourceUnavailable, err)
			}
			defer src.Close()

			doc, err := job.Assemble(ctx, src, cfg, now, a.logger)
			if err != nil {
				return err
			}
			var html []byte
			if fragment {
				html, err = renderer.Fragment(doc)
			} else {
				html, err = renderer.Page(doc)
			}
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(html)
				return err
			}
			if err := publish.WriteAtomic(output, html); err != nil {
				return err
			}
			newPrinter(cmd.ErrOrStderr(), a.noColor).success("wrote %s (%d sections)", output, len(doc.Sections))
			return nil
		},
	}
	cmd.Flags().StringVar(&nowFlag, "now", "", "reference time for the windows (RFC 3339, default current time)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "render only the report section, without the page wrapper")
	return cmd
}
