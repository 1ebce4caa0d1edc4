/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	syncuc "qualisync/internal/usecase/sync"
)

var syncTargetsFile string

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Ingest and reconcile external platform data",
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.PersistentFlags().StringVar(&syncTargetsFile, "targets", "", "Targets file path (defaults to sync.targets_file)")
}

func loadTargetList(svc services) (syncuc.TargetList, error) {
	path := syncTargetsFile
	if path == "" {
		path = svc.App.Config.Sync.TargetsFile
	}
	return syncuc.LoadTargets(path)
}

// runSync executes the batch and renders the summary. The summary is
// printed even when targets failed; the returned error carries the
// partial-failure marker for the exit code.
func runSync(cmd *cobra.Command, svc services, targets syncuc.TargetList) error {
	summary, runErr := svc.Sync.Run(cmd.Context(), targets)
	renderSummary(cmd.OutOrStdout(), summary)
	if runErr != nil {
		return runErr
	}
	return summary.Err()
}
