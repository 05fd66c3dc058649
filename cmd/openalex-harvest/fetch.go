// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/openalex-harvest/internal/harvest"
	"github.com/pdiddy/openalex-harvest/internal/openalex"
	"github.com/pdiddy/openalex-harvest/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultPerPage   = 200
	defaultCountry   = "us"
	defaultMinRefs   = 10
	defaultUserAgent = "openalex-harvest/0.1"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and flatten works for a publication year",
	Long: `Fetch pages through the OpenAlex Works API cursor, flattening every work
and writing one JSON line per record to a cumulative file plus per-page
snapshots. The cursor is checkpointed after each page; an interrupted run
is picked up with --resume <page>.

A non-success response ends the run keeping everything already written;
rerun with --resume to continue from the last checkpoint.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Int("year", 0, "publication year to harvest (required)")
	fetchCmd.Flags().Int("resume", 0, "resume an interrupted run from this page number")
	fetchCmd.Flags().String("out-dir", ".", "base directory for the output tree")
	fetchCmd.Flags().Int("per-page", defaultPerPage, "page size requested from the API")
	fetchCmd.Flags().Duration("delay", defaultDelay, "pause after each successful page fetch")
	fetchCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	fetchCmd.Flags().String("mailto", "", "email for OpenAlex polite pool access")
	fetchCmd.Flags().String("country", defaultCountry, "institution country code filter")
	fetchCmd.Flags().Int("min-refs", defaultMinRefs, "minimum referenced works count filter (exclusive)")
	fetchCmd.Flags().Int("max-pages", 0, "stop after this many pages (0 = no cap)")
	fetchCmd.MarkFlagRequired("year")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")
	if year <= 0 {
		return fmt.Errorf("--year must be a positive integer")
	}
	resume, _ := cmd.Flags().GetInt("resume")
	outDir, _ := cmd.Flags().GetString("out-dir")
	perPage, _ := cmd.Flags().GetInt("per-page")
	delay, _ := cmd.Flags().GetDuration("delay")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	country, _ := cmd.Flags().GetString("country")
	minRefs, _ := cmd.Flags().GetInt("min-refs")
	maxPages, _ := cmd.Flags().GetInt("max-pages")

	mailto, _ := cmd.Flags().GetString("mailto")
	if mailto == "" {
		mailto = viper.GetString("mailto")
	}

	cfg := types.HarvestConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
			Mailto:    mailto,
		},
		Year:           year,
		ResumeFromPage: resume,
		OutDir:         outDir,
		PerPage:        perPage,
		PageDelay:      delay,
		CountryCode:    country,
		MinReferences:  minRefs,
		MaxPages:       maxPages,
	}

	logger := newLogger()
	client := openalex.NewClient(&http.Client{Timeout: cfg.Timeout}, cfg.HTTPConfig)

	res, err := harvest.Run(cmd.Context(), client, cfg, logger)
	if err != nil {
		return err
	}

	if res.Stopped {
		fmt.Fprintf(os.Stdout, "Run stopped early: HTTP %d after page %d. %d articles kept; resume with --resume %d.\n",
			res.StatusCode, res.Pages, res.Total, res.Pages+1)
		return nil
	}
	fmt.Fprintf(os.Stdout, "Done. Downloaded %d articles for %d (%d pages).\n", res.Total, year, res.Pages)
	return nil
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
}
