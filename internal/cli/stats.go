package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/ziptree/pkg/pipeline"
	"github.com/matzehuels/ziptree/pkg/ziptree"
)

// distanceSummary describes the distances of all lookback hits of a tree.
type distanceSummary struct {
	Hits    int
	PerSeed float64
	Mean    float64
	StdDev  float64
	Median  float64
	P90     float64
	Max     float64
}

// summarize runs a lookback from every seed and summarizes the hit
// distances.
func summarize(res *pipeline.Result, limit ziptree.Distance) (distanceSummary, error) {
	var dists []float64
	for pos := range res.Tree.All() {
		hits, err := res.Tree.Lookback(pos, limit)
		if err != nil {
			return distanceSummary{}, err
		}
		for _, h := range hits {
			dists = append(dists, float64(h.Distance))
		}
	}

	s := distanceSummary{Hits: len(dists)}
	if n := res.Tree.SeedCount(); n > 0 {
		s.PerSeed = float64(len(dists)) / float64(n)
	}
	if len(dists) == 0 {
		return s, nil
	}
	slices.Sort(dists)
	s.Mean, s.StdDev = stat.MeanStdDev(dists, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, dists, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, dists, nil)
	s.Max = dists[len(dists)-1]
	return s, nil
}

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var opts queryOpts

	cmd := &cobra.Command{
		Use:   "stats <workload>",
		Short: "Summarize tree shape and lookback distances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			limit, err := c.parseLimit(opts.limit)
			if err != nil {
				return err
			}
			runner, res, err := c.buildOne(ctx, args[0], opts.cacheFlags)
			if err != nil {
				return err
			}
			defer runner.Close()

			sum, err := summarize(res, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := res.Stats
			fmt.Fprintln(out, StyleTitle.Render(res.Name))
			printKeyValue(out, "seeds", itoa(st.Seeds))
			printKeyValue(out, "items", itoa(st.Items))
			printKeyValue(out, "chains", itoa(st.Chains))
			printKeyValue(out, "snarls", itoa(st.Snarls))
			printKeyValue(out, "edges", fmt.Sprintf("%d (%d unreachable)", st.Edges, st.Unreachable))
			printKeyValue(out, "max nesting", itoa(st.MaxNesting))
			printKeyValue(out, "build time", st.BuildTime.String())

			fmt.Fprintln(out)
			fmt.Fprintln(out, StyleTitle.Render("Lookback within "+limit.String()))
			printKeyValue(out, "hits", fmt.Sprintf("%d (%.2f per seed)", sum.Hits, sum.PerSeed))
			if sum.Hits > 0 {
				printKeyValue(out, "mean", fmt.Sprintf("%.2f ± %.2f", sum.Mean, sum.StdDev))
				printKeyValue(out, "median", fmt.Sprintf("%.0f", sum.Median))
				printKeyValue(out, "p90", fmt.Sprintf("%.0f", sum.P90))
				printKeyValue(out, "max", fmt.Sprintf("%.0f", sum.Max))
			}
			return nil
		},
	}

	opts.register(cmd)
	return cmd
}
