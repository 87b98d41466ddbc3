package root

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"crystalline/internal/engine"
	"crystalline/internal/ui"
)

func newSynergiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "synergies",
		Short: "List synergies and their unlock progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st, err := svc.Status(ctx, flagUser)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconLink, "Synergies"))
			for _, s := range st.Synergies {
				mark := ui.Muted.Render("○")
				if st.System.ActiveSynergies[s.ID] {
					mark = ui.Good.Render("●")
				}
				fmt.Fprintf(out, "%s %s — %s\n", mark, ui.H2.Render(s.Name), s.Bonus)

				attrs := make([]engine.Attribute, 0, len(s.MinLevels))
				for attr := range s.MinLevels {
					attrs = append(attrs, attr)
				}
				sort.Slice(attrs, func(i, j int) bool { return attrs[i] < attrs[j] })
				for _, attr := range attrs {
					min := s.MinLevels[attr]
					have := st.System.Crystals[attr].Value
					state := ui.Good.Render("✓")
					if have < min {
						state = ui.Muted.Render(fmt.Sprintf("%d/%d", have, min))
					}
					fmt.Fprintf(out, "    %-22s %s\n", ui.AttributeName(attr), state)
				}
			}
			return nil
		},
	}
}
