package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/stockyard/internal/usecase"
)

func convertCmd(opts *rootOpts) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:     "convert",
		Short:   "Convert a backup file between csv, json and xml",
		Example: "  stockyard convert --from backups/inventory.csv --to inventory.xml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(opts.workspace)
			if err != nil {
				return err
			}
			defer ws.setupLogging(opts.debug)()

			toFormat, err := usecase.FormatFromPath(to)
			if err != nil {
				return err
			}
			reg, report, err := ws.loadFile(from)
			if err != nil {
				return err
			}
			if err := ws.newBackup(reg, false).Export(toFormat, to); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Converted %d product(s) from %s to %s", report.Applied, from, to)
			if report.Skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (%d malformed record(s) skipped)", report.Skipped)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source backup file (.csv, .json or .xml)")
	cmd.Flags().StringVar(&to, "to", "", "Destination file; the format follows its extension")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
