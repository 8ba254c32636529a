package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/ciricc/copybench/internal/app"
	"github.com/ciricc/copybench/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "copybench.yaml"

type rootOptions struct {
	configPath string
	logLevel   string
	dataset    string
}

// NewRootCmd builds the copybench command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "copybench",
		Short: "Charts and PDF report for two-copy, one-copy and zero-copy transfer benchmarks",
		Long: `copybench turns socket transfer measurements into comparison charts and a
paginated PDF report.

PHASES
  render-charts    Render the chart set and write the manifest
  compose-report   Assemble the PDF from an existing manifest
  run              Both phases, in order

INSPECTION
  summary          Per cell winners and cycles per byte`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	root.PersistentFlags().StringVar(&opts.dataset, "dataset", "", "measurement file; overrides the config, empty keeps the built-in run")

	root.AddCommand(
		newRenderChartsCmd(opts),
		newComposeReportCmd(opts),
		newRunCmd(opts),
		newSummaryCmd(opts),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// loadConfig reads the config file. The default path may be absent; an
// explicitly passed one may not.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	optional := !cmd.Flags().Changed("config")
	cfg, err := config.Load(o.configPath, optional)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %s: %w", o.configPath, err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.dataset != "" {
		cfg.Dataset.Path = o.dataset
	}
	return cfg, nil
}

func (o *rootOptions) newApp(cmd *cobra.Command) (*app.Application, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := app.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, log)
}
