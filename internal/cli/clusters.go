package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// clustersCommand creates the clusters command.
func (c *CLI) clustersCommand() *cobra.Command {
	var opts queryOpts
	var singletons bool

	cmd := &cobra.Command{
		Use:   "clusters <workload>",
		Short: "Group seeds that lie within a distance limit",
		Long: `Clusters joins every seed with the seeds its bounded lookback reaches and
prints the resulting groups, ordered by their smallest seed.`,
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

			clusters, err := runner.Clusters(ctx, res, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printInfo(out, "%s clusters within %s", StyleNumber.Render(itoa(len(clusters))), StyleNumber.Render(limit.String()))
			var rows [][]string
			for i, bm := range clusters {
				if bm.GetCardinality() == 1 && !singletons {
					continue
				}
				members := make([]string, 0, bm.GetCardinality())
				for it := bm.Iterator(); it.HasNext(); {
					members = append(members, "s"+itoa(int(it.Next())))
				}
				rows = append(rows, []string{itoa(i), itoa(len(members)), strings.Join(members, " ")})
			}
			if len(rows) == 0 {
				printDetail(out, "every seed is alone; use --singletons to list them")
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"Cluster", "Size", "Seeds"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&singletons, "singletons", false, "include clusters of one seed")
	opts.register(cmd)

	return cmd
}
