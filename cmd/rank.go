/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank <organization>",
	Short: "Rank analysis projects by attention priority",
	Long: "Order the organization's analysis projects so the most attention-worthy " +
		"comes first: coverage descending, duplication ascending, new issues " +
		"ascending, worst hotspot severity ascending. Missing values rank worse " +
		"than any present value.",
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		args := cmd.Flags().Args()
		entries, err := svc.Rank.RankOrganization(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		renderRanking(cmd.OutOrStdout(), args[0], entries)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(rankCmd)
}
