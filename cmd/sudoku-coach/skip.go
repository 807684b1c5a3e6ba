package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"svw.info/sudokucoach/internal/coach"
	"svw.info/sudokucoach/internal/infrastructure/storage"
)

var skipClear bool

var skipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Mark the lesson as skipped, or clear the mark with --clear",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		flags := storage.NewFlags(cfg.FlagsPath())
		if err := flags.Set(coach.SkipFlag, !skipClear); err != nil {
			return err
		}
		if skipClear {
			fmt.Fprintln(cmd.OutOrStdout(), "The lesson will run on the next start.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "The lesson will no longer start on its own.")
		return nil
	},
}

func init() {
	skipCmd.Flags().BoolVar(&skipClear, "clear", false, "Clear the skip mark")
}
