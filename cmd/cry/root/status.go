package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"crystalline/internal/engine"
	"crystalline/internal/ui"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show profile, crystal gauges and resonance",
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
			fmt.Fprintln(out, ui.Heading(ui.IconCrystal, "Crystalline status"))
			fmt.Fprintln(out, ui.LabelValue("User", st.Profile.UID))
			fmt.Fprintln(out, ui.LabelValue("Level", fmt.Sprintf("%d (%d XP, next at %d)",
				st.Profile.PlayerLevel, st.Profile.TotalXP, engine.XPForLevel(st.Profile.PlayerLevel+1))))
			fmt.Fprintln(out, ui.LabelValue("Resonance", st.System.ResonanceLevel))
			fmt.Fprintln(out, ui.LabelValue("Growth events", st.System.TotalGrowthEvents))
			fmt.Fprintln(out)

			fmt.Fprintln(out, ui.H2.Render("Crystals"))
			for _, attr := range engine.AllAttributes {
				c := st.System.Crystals[attr]
				fmt.Fprintf(out, "  %-22s %s %3d/%d\n",
					ui.AttributeName(attr), gaugeBar(c.Value, 20), c.Value, engine.CrystalMaxValue)
			}

			if len(st.System.ActiveSynergies) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, ui.H2.Render("Active synergies"))
				for _, s := range st.Synergies {
					if st.System.ActiveSynergies[s.ID] {
						fmt.Fprintf(out, "  %s %s — %s\n", ui.IconLink, ui.Good.Render(s.Name), s.Bonus)
					}
				}
			}
			return nil
		},
	}
}
