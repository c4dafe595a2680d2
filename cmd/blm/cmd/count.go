/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// countCmd represents the count command
var countCmd = &cobra.Command{
	Use:   "count <file>",
	Short: "Count the records of a BLM file",
	Long: `Count the records in the DATA section of a BLM file.

With --preview only the first records are indexed, so the count is a lower bound.

Example:
  blm count feed.blm
  blm count feed.blm --preview`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		preview, _ := cmd.Flags().GetBool("preview")

		f, err := a.openFile(args[0], preview)
		if err != nil {
			return err
		}
		defer f.Close()

		count, err := f.RecordCount()
		if err != nil {
			return err
		}
		cmd.Printf("%d\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
	countCmd.Flags().Bool("preview", false, "Only index the first records")
}
