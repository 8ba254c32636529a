package cli

import (
	"fmt"
	"io"

	"github.com/ciricc/copybench/internal/report"
	"github.com/spf13/cobra"
)

func newRenderChartsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "render-charts",
		Short: "Render the chart set and write the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			m, err := a.RenderCharts(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, art := range m.Artifacts {
				fmt.Fprintf(out, "%-16s %s (%d bytes)\n", art.ID, art.Path, art.Bytes)
			}
			fmt.Fprintf(out, "manifest: %s\n", a.Config.Output.Manifest)
			return nil
		},
	}
}

func newComposeReportCmd(opts *rootOptions) *cobra.Command {
	var manifest string
	cmd := &cobra.Command{
		Use:   "compose-report",
		Short: "Assemble the PDF report from a chart manifest",
		Long: `Assemble the PDF report from the manifest written by render-charts.

Charts listed in the manifest but missing on disk are replaced by an error
line in the document; a missing manifest fails the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			if manifest != "" {
				a.Config.Output.Manifest = manifest
			}
			s, err := a.ComposeReport(cmd.Context(), nil)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().StringVar(&manifest, "manifest", "", "manifest path; defaults to output.manifest from the config")
	return cmd
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Render the charts, then compose the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			s, err := a.Run(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func printSummary(w io.Writer, s report.Summary) {
	if s.Succeeded() {
		fmt.Fprintf(w, "Success! %s has been generated (%d pages).\n", s.Path, s.Pages)
		return
	}
	fmt.Fprintf(w, "%s has been generated (%d pages) with %d missing image(s):\n", s.Path, s.Pages, len(s.Markers))
	for _, m := range s.Markers {
		fmt.Fprintf(w, "  - %s\n", m)
	}
}
