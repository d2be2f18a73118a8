package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	zterrors "github.com/matzehuels/ziptree/pkg/errors"
	"github.com/matzehuels/ziptree/pkg/pipeline"
	"github.com/matzehuels/ziptree/pkg/snarl"
)

type buildOpts struct {
	cacheFlags
	output  string
	workers int
	quiet   bool
}

// buildCommand creates the build command. Several workloads are indexed
// concurrently; -o is only accepted for a single workload.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build <workload>...",
		Short: "Index workloads and print their seed trees",
		Long: `Build reads workload files (.toml or .json), orders their seeds and encodes
them into seed trees. Each tree is printed in bracket notation:

  [ ]   chain        ( )   snarl
  s<i>  seed i       <n>   distance
  inf   unreachable  {n}   sibling count`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "" && len(args) > 1 {
				return zterrors.New(zterrors.ErrCodeInvalidInput, "-o needs exactly one workload")
			}
			if opts.workers <= 0 {
				opts.workers = c.cfg.Build.Workers
			}
			return c.runBuild(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the encoded store to this file")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "workloads built concurrently (default from config)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "print statistics only")
	opts.cacheFlags.register(cmd)

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, paths []string, opts buildOpts) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	models := make([]snarl.Model, len(paths))
	for i, p := range paths {
		m, err := loadWorkload(p)
		if err != nil {
			return err
		}
		models[i] = m
	}

	runner, err := c.newRunner(ctx, opts.cacheFlags)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	var results []*pipeline.Result
	if len(models) == 1 {
		res, err := runner.Build(ctx, models[0])
		if err != nil {
			return err
		}
		results = []*pipeline.Result{res}
	} else {
		spin := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Indexing %d workloads...", len(models)))
		spin.Start()
		results, err = runner.BuildAll(ctx, models, opts.workers)
		spin.Stop()
		if err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Indexed %d workloads", len(results)))
	}

	for _, res := range results {
		printSuccess(out, "%s", StyleTitle.Render(res.Name))
		printTreeStats(out, res)
		if !opts.quiet {
			fmt.Fprintln(out, res.Tree.String())
		}
	}

	if opts.output != "" {
		if err := zterrors.ValidatePath(opts.output); err != nil {
			return err
		}
		if err := os.WriteFile(opts.output, results[0].Store, 0o644); err != nil {
			return fmt.Errorf("write store: %w", err)
		}
		printFile(out, opts.output)
	}
	return nil
}
