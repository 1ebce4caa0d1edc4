/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"qualisync/internal/errs"
)

// syncResetCmd represents the sync reset command
var syncResetCmd = &cobra.Command{
	Use:   "reset <target...>",
	Short: "Clear recorded last-sync times",
	Long: "Forget the last successful sync time of the named targets so the next run " +
		"reports them as never synced. Targets are labelled source:<workspace> or " +
		"quality:<organization>, matching the run summary.",
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		for _, label := range cmd.Flags().Args() {
			if err := svc.Sync.ResetTarget(cmd.Context(), label); err != nil {
				return errs.Wrapf(err, "reset target %s", label)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", label)
		}
		return nil
	}),
}

func init() {
	syncCmd.AddCommand(syncResetCmd)
}
