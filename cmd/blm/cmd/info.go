/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show the header, columns and sections of a BLM file",
	Long: `Show the header metadata, column names, section offsets and record count
of a BLM file.

Example:
  blm info feed.blm
  blm info feed.blm --preview`,
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

		h := f.Header()
		cmd.Printf("File:           %s\n", args[0])
		cmd.Printf("Version:        %s\n", h.Version)
		cmd.Printf("EOF:            %s\n", printable(h.EOF))
		cmd.Printf("EOR:            %s\n", printable(h.EOR))
		cmd.Printf("Property Count: %d\n", h.PropertyCount)
		cmd.Printf("Generated Date: %s\n", h.GeneratedDate)
		cmd.Printf("Records:        %d", count)
		if !f.Complete() {
			cmd.Printf(" (preview)")
		}
		cmd.Printf("\n")
		cmd.Printf("Fields (%d):     %s\n", len(h.Fields), strings.Join(h.Fields, ", "))

		cmd.Printf("\nSections:\n")
		cmd.Printf("  %-10s %10s %10s %10s\n", "NAME", "TAG", "START", "LENGTH")
		for _, s := range f.Sections() {
			cmd.Printf("  %-10s %10d %10d %10d\n", s.Name, s.TagOffset, s.StartOffset, s.Length)
		}
		return nil
	},
}

// printable renders a delimiter byte for display
func printable(b byte) string {
	if b == 0 {
		return "(none)"
	}
	return strconv.Quote(string([]byte{b}))
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().Bool("preview", false, "Only index the first records")
}
