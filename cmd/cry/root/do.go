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

func newDoCmd() *cobra.Command {
	var flagAssist float64

	cmd := &cobra.Command{
		Use:   "do <id>",
		Short: "Complete a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.New("id must be an integer")
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

			id, _ := strconv.ParseInt(args[0], 10, 64)
			res, err := svc.CompleteTask(ctx, engine.CompleteTaskInput{
				UID:              flagUser,
				TaskID:           id,
				AssistMultiplier: flagAssist,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.AlreadyCompleted {
				fmt.Fprintln(out, ui.Muted.Render("Task was already completed."))
				fmt.Fprintln(out, ui.LabelValue("XP (frozen)", res.XP.FinalXP))
				return nil
			}

			fmt.Fprintln(out, ui.Heading(ui.IconDone, "Task completed"))
			fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%d (base %d × d%.0f × mood %.2f × assist %.2f)",
				res.XP.FinalXP, res.XP.BaseXP, res.XP.DifficultyMultiplier, res.XP.MoodCoefficient, res.XP.ADHDAssistMultiplier)))
			if res.LevelUp {
				fmt.Fprintf(out, "%s %s level %d → %d\n", ui.IconBolt, ui.BadgeLevelUp, res.LevelBefore, res.LevelAfter)
			}
			printGrowth(out, res.Growth)
			return nil
		},
	}

	cmd.Flags().Float64Var(&flagAssist, "assist", 1.0, "ADHD-assist multiplier (clamped to 1.0-1.3)")
	return cmd
}
