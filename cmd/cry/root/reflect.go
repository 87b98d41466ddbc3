package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"crystalline/internal/ui"
)

func newReflectCmd() *cobra.Command {
	var flagKey string

	cmd := &cobra.Command{
		Use:   "reflect <notes...>",
		Short: "Record a growth-note reflection",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("reflection notes are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			key := flagKey
			if key == "" {
				key = "reflect:" + uuid.NewString()
			}
			res, err := svc.SubmitReflection(ctx, flagUser, key, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Growth != nil && res.Growth.Duplicate {
				fmt.Fprintln(out, ui.Muted.Render("Reflection already recorded for this key."))
				return nil
			}
			fmt.Fprintln(out, ui.Heading(ui.IconNote, "Reflection recorded"))
			fmt.Fprintln(out, ui.LabelValue("XP", res.XPAwarded))
			if res.LevelUp {
				fmt.Fprintf(out, "%s %s level %d → %d\n", ui.IconBolt, ui.BadgeLevelUp, res.LevelBefore, res.LevelAfter)
			}
			printGrowth(out, res.Growth)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagKey, "key", "", "idempotency key (generated when empty)")
	return cmd
}
