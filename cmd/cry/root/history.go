package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"crystalline/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var flagLimit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent growth events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			recs, err := svc.GrowthHistory(ctx, flagUser, flagLimit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No growth events yet."))
				return nil
			}
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Growth history"))
			for _, r := range recs {
				line := fmt.Sprintf("%s  %-18s +%-2d %s",
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					string(r.EventKind), r.Amount, ui.AttributeName(r.Attribute))
				if r.Context != "" {
					line += "  " + ui.Muted.Render(r.Context)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&flagLimit, "limit", "l", 20, "max entries to show")
	return cmd
}
