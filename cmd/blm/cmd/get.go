/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ssargent/blmreader/pkg/blm"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <file> <n>",
	Short: "Print a record",
	Long: `Print record n of a BLM file, one "FIELD: value" line per column.

Example:
  blm get feed.blm 0
  blm get feed.blm 12 --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		p, closeFile, err := loadRecord(cmd, args[0], args[1])
		if err != nil {
			return err
		}
		defer closeFile()

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p.Fields())
		}

		for _, name := range p.File().Map() {
			cmd.Printf("%s: %s\n", name, p.Query(name))
		}
		return nil
	},
}

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <file> <n> <field>",
	Short: "Print one field of a record",
	Long: `Print the value of a named column in record n.

Example:
  blm query feed.blm 0 PRICE`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, closeFile, err := loadRecord(cmd, args[0], args[1])
		if err != nil {
			return err
		}
		defer closeFile()

		value, err := p.Lookup(args[2])
		if err != nil {
			return err
		}
		cmd.Println(value)
		return nil
	},
}

// loadRecord opens path and loads the record at the position given by n
func loadRecord(cmd *cobra.Command, path, n string) (*blm.Parser, func(), error) {
	a, err := appFrom(cmd)
	if err != nil {
		return nil, nil, err
	}
	index, err := strconv.Atoi(n)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid record index %q", n)
	}

	f, err := a.openFile(path, false)
	if err != nil {
		return nil, nil, err
	}
	p := blm.NewParser(f)
	if err := p.LoadRecord(index); err != nil {
		f.Close()
		return nil, nil, err
	}
	return p, func() { f.Close() }, nil
}

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(queryCmd)
	getCmd.Flags().Bool("json", false, "Print the record as a JSON object")
}
