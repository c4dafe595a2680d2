/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/ssargent/blmreader/pkg/blm"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export every record as JSON",
	Long: `Export the records of a BLM file as a JSON array of objects keyed by column name.

Example:
  blm export feed.blm
  blm export feed.blm --out feed.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")
		preview, _ := cmd.Flags().GetBool("preview")

		f, err := a.openFile(args[0], preview)
		if err != nil {
			return err
		}
		defer f.Close()

		var w io.Writer = cmd.OutOrStdout()
		if out != "" {
			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer file.Close()
			w = file
		}

		count, err := exportRecords(w, f)
		if err != nil {
			return err
		}
		level.Info(a.logger).Log("msg", "exported records", "records", count, "file", args[0])
		return nil
	},
}

// exportRecords streams every record of f to w as a JSON array
func exportRecords(w io.Writer, f *blm.File) (int, error) {
	p := blm.NewParser(f)
	it := f.Records()
	defer it.Close()

	if _, err := io.WriteString(w, "["); err != nil {
		return 0, err
	}
	count := 0
	for it.Next() {
		p.Parse(it.Index(), it.Record())
		data, err := json.Marshal(p.Fields())
		if err != nil {
			return count, err
		}
		sep := ",\n"
		if count == 0 {
			sep = "\n"
		}
		if _, err := io.WriteString(w, sep+string(data)); err != nil {
			return count, err
		}
		count++
	}
	if err := it.Err(); err != nil {
		return count, err
	}
	_, err := io.WriteString(w, "\n]\n")
	return count, err
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("out", "", "Write to this file instead of stdout")
	exportCmd.Flags().Bool("preview", false, "Only export the first records")
}
