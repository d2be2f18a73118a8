package cli

import (
	"github.com/spf13/cobra"

	zterrors "github.com/matzehuels/ziptree/pkg/errors"
	ztio "github.com/matzehuels/ziptree/pkg/io"
)

// convertCommand creates the convert command, which rewrites a workload
// in the format implied by the output extension.
func (c *CLI) convertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a workload between TOML and JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadWorkload(args[0])
			if err != nil {
				return err
			}
			if err := zterrors.ValidatePath(args[1]); err != nil {
				return err
			}
			if err := ztio.ExportFile(args[1], m); err != nil {
				return zterrors.Wrap(zterrors.ErrCodeInvalidFormat, err, "write %s", args[1])
			}
			printSuccess(cmd.OutOrStdout(), "Converted %s", m.Name)
			printFile(cmd.OutOrStdout(), args[1])
			return nil
		},
	}
}
