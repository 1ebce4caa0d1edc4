/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// linkCmd represents the link command
var linkCmd = &cobra.Command{
	Use:   "link <organization> <workspace>",
	Short: "Link analysis projects to their repositories",
	Long: "Match each analysis project of the organization to a repository of the " +
		"workspace by the slug embedded in the analysis project key. Links are " +
		"one-to-one; existing links are never overwritten.",
	Args: cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		args := cmd.Flags().Args()
		report, err := svc.Sync.LinkAnalysisProjects(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		renderLinkReport(cmd.OutOrStdout(), report)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(linkCmd)
}
