package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	zterrors "github.com/matzehuels/ziptree/pkg/errors"
	"github.com/matzehuels/ziptree/pkg/pipeline"
	"github.com/matzehuels/ziptree/pkg/ziptree"
)

type queryOpts struct {
	cacheFlags
	limit string
}

func (o *queryOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.limit, "limit", "l", "", "distance limit (default from config)")
	o.cacheFlags.register(cmd)
}

func (c *CLI) parseLimit(s string) (ziptree.Distance, error) {
	n, err := zterrors.ValidateLimit(s, c.cfg.Build.Limit)
	return ziptree.Distance(n), err
}

// lookbackCommand creates the lookback command.
func (c *CLI) lookbackCommand() *cobra.Command {
	var opts queryOpts
	var seed string

	cmd := &cobra.Command{
		Use:   "lookback <workload>",
		Short: "List the seeds reachable backwards from a seed",
		Long: `Lookback walks the seed tree backwards from --seed and lists every earlier
seed of the same component whose distance is within --limit, nearest in
encoded order first.`,
		Args: cobra.ExactArgs(1),
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

			s, err := zterrors.ValidateSeed(seed, res.Tree.SeedCount())
			if err != nil {
				return err
			}
			hits, err := runner.Lookback(ctx, res, s, limit)
			if err != nil {
				return err
			}
			printHits(cmd, res, s, limit, hits)
			return nil
		},
	}

	cmd.Flags().StringVarP(&seed, "seed", "s", "", "seed index to start from")
	_ = cmd.MarkFlagRequired("seed")
	opts.register(cmd)

	return cmd
}

func printHits(cmd *cobra.Command, res *pipeline.Result, seed int, limit ziptree.Distance, hits []ziptree.Hit) {
	out := cmd.OutOrStdout()
	printInfo(out, "Seed %s at %s, limit %s",
		StyleNumber.Render(strconv.Itoa(seed)),
		res.Tree.Seed(seed).Pos,
		StyleNumber.Render(limit.String()))
	if len(hits) == 0 {
		printDetail(out, "no seeds within the limit")
		return
	}
	rows := make([][]string, len(hits))
	for i, h := range hits {
		rows[i] = []string{itoa(h.Seed), res.Tree.Seed(h.Seed).Pos.String(), h.Distance.String()}
	}
	fmt.Fprintln(out, renderTable([]string{"Seed", "Position", "Distance"}, rows))
}
