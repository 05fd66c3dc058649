// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/openalex-harvest/internal/harvest"
	"github.com/pdiddy/openalex-harvest/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Load harvested records into a local SQLite database",
	Long: `Index streams the cumulative JSONL file for a year into a SQLite
database with a full-text index over titles and research topics.
Re-indexing is idempotent: records sharing an id replace earlier rows.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().Int("year", 0, "publication year of the harvest (required)")
	indexCmd.Flags().String("out-dir", ".", "base directory of the output tree")
	indexCmd.Flags().String("db", "", "database file (default {yearDir}/index/works.db)")
	indexCmd.MarkFlagRequired("year")

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")
	outDir, _ := cmd.Flags().GetString("out-dir")
	dbPath, _ := cmd.Flags().GetString("db")

	lay := harvest.NewLayout(outDir, year)
	if dbPath == "" {
		dbPath = lay.IndexDBPath()
	}

	store, err := index.NewStore(dbPath, 0)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := store.Load(cmd.Context(), lay.CumulativePath(), os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Indexed %d records (%d new, %d replaced, %d failed) into %s\n",
		sum.Total(), sum.Inserted, sum.Replaced, sum.Failed, dbPath)

	stats, err := store.Aggregate(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Works: %d  multidisciplinary: %d  mean citation ratio: %.3f\n",
		stats.Works, stats.Multidisciplinary, stats.MeanCitationRatio)
	return nil
}
