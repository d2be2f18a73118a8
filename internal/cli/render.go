package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	zterrors "github.com/matzehuels/ziptree/pkg/errors"
	"github.com/matzehuels/ziptree/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	cacheFlags
	output   string // output file; the extension selects DOT or SVG
	detailed bool   // add graph positions to seed labels
	hideInf  bool   // drop unreachable distance edges
}

// renderCommand creates the render command. Without -o the DOT source is
// written to stdout.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <workload>",
		Short: "Draw a seed tree as a Graphviz diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := formatDOT
			if opts.output != "" {
				if err := zterrors.ValidatePath(opts.output); err != nil {
					return err
				}
				f, err := zterrors.ValidateFormat(filepath.Ext(opts.output), formatDOT, formatSVG)
				if err != nil {
					return err
				}
				format = f
			}

			ctx := cmd.Context()
			runner, res, err := c.buildOne(ctx, args[0], opts.cacheFlags)
			if err != nil {
				return err
			}
			defer runner.Close()

			dot := nodelink.ToDOT(res.Tree, nodelink.Options{Detailed: opts.detailed, HideUnreachable: opts.hideInf})
			if opts.output == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), dot)
				return err
			}

			data := []byte(dot)
			if format == formatSVG {
				if data, err = nodelink.RenderSVG(ctx, dot); err != nil {
					return fmt.Errorf("render svg: %w", err)
				}
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", opts.output, err)
			}
			printSuccess(cmd.OutOrStdout(), "Rendered %s", res.Name)
			printFile(cmd.OutOrStdout(), opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (.dot or .svg)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show seed positions in labels")
	cmd.Flags().BoolVar(&opts.hideInf, "hide-unreachable", false, "omit unreachable distance edges")
	opts.cacheFlags.register(cmd)

	return cmd
}
