/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/blmreader/pkg/blm"
	"github.com/ssargent/blmreader/pkg/query"
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find <file> <field> <op> <value>",
	Short: "Find records by field value",
	Long: `Find the records whose field satisfies a condition and print their positions.

Operators are =, !=, >, <, >=, <= and ~ (contains). Ordering operators compare
numerically when both sides are numbers. Quote operators the shell would interpret.

Example:
  blm find feed.blm PRICE '>=' 250000
  blm find feed.blm ADDRESS_1 '~' Cottage --limit 10`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		q := query.FieldQuery{Field: args[1], Operator: args[2], Value: args[3]}
		if err := q.Validate(); err != nil {
			return err
		}

		f, err := a.openFile(args[0], false)
		if err != nil {
			return err
		}
		defer f.Close()

		engine := query.NewScanEngine(a.logger)
		it, err := engine.Execute(cmd.Context(), blm.NewParser(f), q)
		if err != nil {
			return err
		}
		return printMatches(cmd, it, q.Field, limit)
	},
}

// rangeCmd represents the range command
var rangeCmd = &cobra.Command{
	Use:   "range <file> <field> <min> <max>",
	Short: "Find records whose field lies within bounds",
	Long: `Find the records whose field lies between min and max, both inclusive, and
print their positions. Bounds compare numerically when both sides are numbers.

Example:
  blm range feed.blm PRICE 250000 400000`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		field := args[1]

		f, err := a.openFile(args[0], false)
		if err != nil {
			return err
		}
		defer f.Close()

		engine := query.NewScanEngine(a.logger)
		it, err := engine.ExecuteRange(cmd.Context(), blm.NewParser(f),
			query.FieldQuery{Field: field, Operator: ">=", Value: args[2]},
			query.FieldQuery{Field: field, Operator: "<=", Value: args[3]})
		if err != nil {
			return err
		}
		return printMatches(cmd, it, field, limit)
	},
}

// printMatches prints the index and field value of each result, up to limit
func printMatches(cmd *cobra.Command, it query.QueryIterator, field string, limit int) error {
	defer it.Close()

	found := 0
	for it.Next() {
		result := it.Result()
		cmd.Printf("%d\t%s\n", result.Index, result.Row[field])
		found++
		if limit > 0 && found >= limit {
			break
		}
	}
	return it.Err()
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().Int("limit", 0, "Stop after this many matches (0 for all)")

	rootCmd.AddCommand(rangeCmd)
	rangeCmd.Flags().Int("limit", 0, "Stop after this many matches (0 for all)")
}
