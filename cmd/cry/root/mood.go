package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"crystalline/internal/engine"
	"crystalline/internal/ui"
)

func newMoodCmd() *cobra.Command {
	var flagNotes string

	cmd := &cobra.Command{
		Use:   "mood <score>",
		Short: "Log a mood score (1-5)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("score is required")
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 || n > 5 {
				return errors.New("score must be 1-5")
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

			n, _ := strconv.Atoi(args[0])
			res, err := svc.LogMood(ctx, flagUser, engine.MoodScore(n), flagNotes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconMood, "Mood logged"))
			fmt.Fprintln(out, ui.LabelValue("Score", fmt.Sprintf("%d/5", int(res.Score))))
			fmt.Fprintln(out, ui.LabelValue("XP coefficient", fmt.Sprintf("%.2f", res.Coefficient)))
			if res.Growth != nil {
				fmt.Fprintln(out, ui.Good.Render("Mood improved!"))
				printGrowth(out, res.Growth)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagNotes, "notes", "n", "", "optional notes")
	return cmd
}
