package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/ciricc/copybench/pkg/benchreport"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var threads int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the winning strategy and cycles per byte for every cell",
		Long: `Print, for every (threads, message size) cell, the strategy with the highest
throughput and the lowest latency, the cycles per byte of each strategy, and the
message size at which one-copy and zero-copy first beat two-copy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			cells, err := a.Dataset.Summarize()
			if err != nil {
				return err
			}
			if threads > 0 {
				cells = lo.Filter(cells, func(c benchreport.CellSummary, _ int) bool { return c.Threads == threads })
				if len(cells) == 0 {
					return fmt.Errorf("no cells with threads=%d (have %v)", threads, a.Dataset.Threads())
				}
			}
			for _, c := range cells {
				for _, s := range c.ZeroThroughputs {
					a.Logger.WarnContext(cmd.Context(), "zero throughput, cycles per byte shown as 0",
						"cell", benchreport.DegenerateCell{Strategy: s, Threads: c.Threads, Size: c.Size.Label}.String())
				}
			}

			out := cmd.OutOrStdout()
			writeCells(out, cells)
			fmt.Fprintln(out)
			return writeCrossovers(out, a.Dataset, lo.Uniq(lo.Map(cells, func(c benchreport.CellSummary, _ int) int { return c.Threads })))
		},
	}
	cmd.Flags().IntVarP(&threads, "threads", "t", 0, "only show this thread count")
	return cmd
}

func writeCells(w io.Writer, cells []benchreport.CellSummary) {
	for i, c := range cells {
		fmt.Fprintf(w, "%d) threads=%d size=%s\n", i+1, c.Threads, c.Size.Label)
		fmt.Fprintf(w, "   throughput_gbps %s best=%s\n", joinByStrategy(c.ThroughputGbps, "%.2f"), c.ThroughputBest)
		if c.HasLatency {
			fmt.Fprintf(w, "   latency_us      %s best=%s\n", joinByStrategy(c.LatencyUs, "%.2f"), c.LatencyBest)
		}
		fmt.Fprintf(w, "   cycles_per_byte %s\n", joinByStrategy(c.CyclesPerByte, "%.3f"))
	}
}

func writeCrossovers(w io.Writer, ds *benchreport.Dataset, threads []int) error {
	for _, challenger := range []benchreport.Strategy{benchreport.OneCopy, benchreport.ZeroCopy} {
		for _, t := range threads {
			size, ok, err := ds.Crossover(challenger, benchreport.TwoCopy, t)
			if err != nil {
				return err
			}
			verdict := "never"
			if ok {
				verdict = "from " + size.Label
			}
			fmt.Fprintf(w, "%s beats %s at threads=%d: %s\n", challenger, benchreport.TwoCopy, t, verdict)
		}
	}
	return nil
}

func joinByStrategy(values []float64, format string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%s="+format, benchreport.Strategies[i], v)
	}
	return strings.Join(parts, " ")
}
