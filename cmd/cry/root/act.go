package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"crystalline/internal/engine"
	"crystalline/internal/ui"
)

func newActCmd() *cobra.Command {
	var (
		flagKey     string
		flagTrigger string
	)

	cmd := &cobra.Command{
		Use:   "act <kind>",
		Short: "Record a growth action (story_choice, social_interaction, ...)",
		Long: "Record a discrete growth action. Kinds: story_choice, social_interaction,\n" +
			"creative_activity, challenge_overcome, wisdom_gained.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("action kind is required")
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

			kind, err := engine.ParseActionKind(args[0])
			if err != nil {
				return err
			}
			key := flagKey
			if key == "" {
				key = "act:" + uuid.NewString()
			}
			growth, err := svc.RecordAction(ctx, flagUser, kind, key, flagTrigger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Action recorded"))
			printGrowth(out, growth)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagKey, "key", "", "idempotency key (generated when empty)")
	cmd.Flags().StringVar(&flagTrigger, "trigger", "", "free-form trigger context")
	return cmd
}
