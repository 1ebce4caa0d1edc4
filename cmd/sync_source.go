/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	syncuc "qualisync/internal/usecase/sync"
)

// syncSourceCmd represents the sync source command
var syncSourceCmd = &cobra.Command{
	Use:   "source [workspace...]",
	Short: "Sync source-hosting targets only",
	Long: "Sync the source-hosting hierarchy (workspaces, projects, repositories, " +
		"commits, pull requests, branches). With no arguments the source targets " +
		"from the targets file are used; arguments name ad-hoc workspaces.",
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		args := cmd.Flags().Args()

		var targets syncuc.TargetList
		if len(args) > 0 {
			for _, workspace := range args {
				targets.Source = append(targets.Source, syncuc.SourceTarget{Workspace: workspace})
			}
		} else {
			list, err := loadTargetList(svc)
			if err != nil {
				return err
			}
			targets.Source = list.Source
			if len(targets.Source) == 0 {
				return errors.New("targets file names no source targets")
			}
		}

		return runSync(cmd, svc, targets)
	}),
}

func init() {
	syncCmd.AddCommand(syncSourceCmd)
}
