/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	syncuc "qualisync/internal/usecase/sync"
)

// syncQualityCmd represents the sync quality command
var syncQualityCmd = &cobra.Command{
	Use:   "quality [organization...]",
	Short: "Sync quality-analysis targets only",
	Long: "Sync the quality-analysis hierarchy (organizations, analysis projects, " +
		"issues, security hotspots, quality gates, metrics). With no arguments the " +
		"quality targets from the targets file are used; arguments name ad-hoc " +
		"organizations.",
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		args := cmd.Flags().Args()

		var targets syncuc.TargetList
		if len(args) > 0 {
			for _, organization := range args {
				targets.Quality = append(targets.Quality, syncuc.QualityTarget{Organization: organization})
			}
		} else {
			list, err := loadTargetList(svc)
			if err != nil {
				return err
			}
			targets.Quality = list.Quality
			if len(targets.Quality) == 0 {
				return errors.New("targets file names no quality targets")
			}
		}

		return runSync(cmd, svc, targets)
	}),
}

func init() {
	syncCmd.AddCommand(syncQualityCmd)
}
