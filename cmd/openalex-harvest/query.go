// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/openalex-harvest/internal/harvest"
	"github.com/pdiddy/openalex-harvest/internal/index"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Full-text search over the indexed works",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().Int("year", 0, "publication year of the harvest (required unless --db is given)")
	queryCmd.Flags().String("out-dir", ".", "base directory of the output tree")
	queryCmd.Flags().String("db", "", "database file (default {yearDir}/index/works.db)")
	queryCmd.Flags().String("text", "", "full-text query over title and research topic (required)")
	queryCmd.Flags().Int("limit", 20, "maximum number of results")
	queryCmd.MarkFlagRequired("text")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")
	outDir, _ := cmd.Flags().GetString("out-dir")
	dbPath, _ := cmd.Flags().GetString("db")
	text, _ := cmd.Flags().GetString("text")
	limit, _ := cmd.Flags().GetInt("limit")

	if dbPath == "" {
		if year <= 0 {
			return fmt.Errorf("provide --db or --year to locate the database")
		}
		dbPath = harvest.NewLayout(outDir, year).IndexDBPath()
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no index at %s; run the index command first", dbPath)
	}

	store, err := index.NewStore(dbPath, limit)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(cmd.Context(), text, limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(os.Stdout, "No results found.")
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d %-6d %-8.3f %s\n", i+1, r.PublicationYear, r.CitationPerReferenceRatio, r.Title)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}
