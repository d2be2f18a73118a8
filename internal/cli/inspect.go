package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	zterrors "github.com/matzehuels/ziptree/pkg/errors"
	"github.com/matzehuels/ziptree/pkg/store"
)

// inspectCommand creates the inspect command. With a workload the store is
// fully decoded against the workload's seeds; without one only the
// metadata is read.
func (c *CLI) inspectCommand() *cobra.Command {
	var workload string

	cmd := &cobra.Command{
		Use:   "inspect <store>",
		Short: "Show the metadata of an encoded store file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := zterrors.ValidatePath(args[0]); err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return zterrors.Wrap(zterrors.ErrCodeNotFound, err, "read store")
			}
			meta, err := store.ReadMeta(data)
			if err != nil {
				return zterrors.Wrap(zterrors.ErrCodeCorruptStore, err, "decode %s", args[0])
			}

			out := cmd.OutOrStdout()
			printKeyValue(out, "id", meta.ID.String())
			printKeyValue(out, "created", meta.Created.Format(time.RFC3339))
			printKeyValue(out, "workload", meta.Workload)
			printKeyValue(out, "seeds", itoa(meta.Seeds))
			printKeyValue(out, "bytes", itoa(len(data)))

			if workload == "" {
				return nil
			}
			m, err := loadWorkload(workload)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), cacheFlags{noCache: true})
			if err != nil {
				return err
			}
			defer runner.Close()
			res, err := runner.Build(cmd.Context(), m)
			if err != nil {
				return err
			}
			t, _, err := store.Unmarshal(data, res.Seeds)
			if err != nil {
				return zterrors.Wrap(zterrors.ErrCodeCorruptStore, err, "decode %s", args[0])
			}
			fmt.Fprintln(out, t.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&workload, "workload", "", "workload the store was built from; decodes the items")
	return cmd
}
