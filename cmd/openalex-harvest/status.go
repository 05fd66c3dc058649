// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/openalex-harvest/internal/harvest"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report progress of the harvest for a year",
	Long: `Status reads the run manifest written after every completed page and
reports the last completed page, running total, and pending cursor. An
empty next cursor means the harvest finished; otherwise the printed page
number is where a resumed run continues.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().Int("year", 0, "publication year of the harvest (required)")
	statusCmd.Flags().String("out-dir", ".", "base directory of the output tree")
	statusCmd.MarkFlagRequired("year")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")
	outDir, _ := cmd.Flags().GetString("out-dir")

	lay := harvest.NewLayout(outDir, year)
	m, err := harvest.LoadManifest(lay.ManifestPath())
	if err != nil {
		return err
	}
	if m == nil {
		fmt.Fprintf(os.Stdout, "No harvest recorded for %d under %s.\n", year, lay.Dir())
		return nil
	}

	fmt.Fprintf(os.Stdout, "Year:            %d\n", m.Year)
	fmt.Fprintf(os.Stdout, "Filter:          %s\n", m.Filter)
	fmt.Fprintf(os.Stdout, "Last page:       %d\n", m.LastPage)
	fmt.Fprintf(os.Stdout, "Downloaded:      %d\n", m.TotalDownloaded)
	fmt.Fprintf(os.Stdout, "Updated:         %s\n", m.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
	if m.NextCursor == "" {
		fmt.Fprintln(os.Stdout, "State:           complete")
	} else {
		fmt.Fprintf(os.Stdout, "State:           in progress (resume with: openalex-harvest fetch --year %d --resume %d)\n",
			m.Year, m.LastPage+1)
	}
	return nil
}
