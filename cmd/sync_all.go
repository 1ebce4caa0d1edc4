/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"qualisync/internal/bootstrap/logging"
)

// syncAllCmd represents the sync all command
var syncAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Sync every target in the targets file, then link the hierarchies",
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		targets, err := loadTargetList(svc)
		if err != nil {
			return err
		}
		syncErr := runSync(cmd, svc, targets)

		// Link after both hierarchies landed. A failed link pair is logged
		// and skipped; the sync outcome decides the exit code.
		for _, quality := range targets.Quality {
			for _, source := range targets.Source {
				report, err := svc.Sync.LinkAnalysisProjects(cmd.Context(), quality.Organization, source.Workspace)
				if err != nil {
					logging.Warn(cmd.Context(), "link pass failed",
						slog.String("organization", quality.Organization),
						slog.String("workspace", source.Workspace),
						slog.String("error", err.Error()))
					continue
				}
				renderLinkReport(cmd.OutOrStdout(), report)
			}
		}

		return syncErr
	}),
}

func init() {
	syncCmd.AddCommand(syncAllCmd)
}
