// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/abstract-scraper/internal/rawstore"
)

var countCmd = &cobra.Command{
	Use:   "count [file]",
	Short: "Count records in a JSON array file",
	Long: `Count streams a JSON array file and prints its number of records without
loading it into memory. With no argument it counts the collection's raw
store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := collection().RawPath()
		if len(args) == 1 {
			path = args[0]
		}

		n, err := rawstore.Count(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s: %d records\n", path, n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
