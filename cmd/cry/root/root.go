package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crystalline/internal/ui"
)

const Version = "0.1.0"

var (
	flagConfig string
	flagUser   string
)

var rootCmd = &cobra.Command{
	Use:           "cry",
	Short:         "Crystalline — therapeutic habit tracker with crystal progression",
	Long:          "Crystalline is a local-first habit/task tracker that turns completed tasks,\nmood logs and reflections into XP and crystal attribute growth.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "main", "user id")

	rootCmd.AddCommand(
		newAddCmd(),
		newDoCmd(),
		newMoodCmd(),
		newReflectCmd(),
		newActCmd(),
		newStatusCmd(),
		newHistoryCmd(),
		newSynergiesCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
