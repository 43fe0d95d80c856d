package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xiliourt/Lyrical-Sync/internal/lyrics"
)

var durationCmd = &cobra.Command{
	Use:   "duration <seconds>",
	Short: "format seconds as M:SS",
	Long:  `format a number of seconds the way the follower's progress bar does. use -- before negative values.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid seconds %q: %w", args[0], err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), lyrics.FormatDuration(seconds))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(durationCmd)
}
