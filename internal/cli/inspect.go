package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/stockyard/internal/domain"
)

func inspectCmd(opts *rootOpts) *cobra.Command {
	var lowOnly bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the products stored in a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(opts.workspace)
			if err != nil {
				return err
			}
			defer ws.setupLogging(opts.debug)()

			reg, report, err := ws.loadFile(args[0])
			if err != nil {
				return err
			}

			products := reg.ListAll()
			low := reg.LowStock()
			if lowOnly {
				products = low
			}
			slices.SortFunc(products, func(a, b *domain.Product) int { return strings.Compare(a.ID(), b.ID()) })

			w := cmd.OutOrStdout()
			theme := NewTheme(w)
			for _, p := range products {
				fmt.Fprintln(w, p.String())
			}
			fmt.Fprintln(w, theme.Faint.Render(fmt.Sprintf(
				"%d product(s), %d below threshold, %d malformed record(s) skipped",
				report.Applied, len(low), report.Skipped,
			)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&lowOnly, "low", false, "Only show products below their threshold")
	return cmd
}
