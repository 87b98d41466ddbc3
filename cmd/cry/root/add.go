package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"crystalline/internal/engine"
	"crystalline/internal/ui"
)

func newAddCmd() *cobra.Command {
	var (
		flagType       string
		flagDifficulty int
		flagTags       []string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
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

			taskType, err := engine.ParseTaskType(flagType)
			if err != nil {
				return err
			}

			id, err := svc.CreateTask(ctx, engine.CreateTaskInput{
				UID:        flagUser,
				TaskType:   taskType,
				Title:      args[0],
				Difficulty: engine.Difficulty(flagDifficulty),
				Tags:       flagTags,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPlus, "Task created"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("ID", id))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Type", string(taskType)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Difficulty", flagDifficulty))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagType, "type", "t", "routine", "task type (routine|one_shot|skill_up|social)")
	cmd.Flags().IntVarP(&flagDifficulty, "difficulty", "d", 1, "difficulty 1-5")
	cmd.Flags().StringSliceVar(&flagTags, "tag", nil, "task tags (e.g. creative, empathy)")
	return cmd
}
