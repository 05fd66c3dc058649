// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest drives cursor pagination against the OpenAlex Works
// API, flattens each work, and persists per-page snapshots, a cumulative
// JSONL file, and cursor checkpoints that allow an interrupted run to be
// resumed without re-fetching completed pages.
package harvest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/encoding/json"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/openalex-harvest/internal/flatten"
	"github.com/pdiddy/openalex-harvest/internal/openalex"
	"github.com/pdiddy/openalex-harvest/pkg/types"
)

// Result summarizes one harvest run.
type Result struct {
	// Total is the number of records written across all pages, including
	// pages recovered from a resumed run.
	Total int
	// Pages is the index of the last completed page.
	Pages int
	// Stopped reports that a non-200 response ended the run early. Data
	// flushed before the failure is kept; nothing is retried.
	Stopped bool
	// StatusCode is the HTTP status that stopped the run, when Stopped.
	StatusCode int
}

// RunSummary is the YAML summary written at the end of every run.
type RunSummary struct {
	Year            int       `yaml:"year"`
	Filter          string    `yaml:"filter"`
	Pages           int       `yaml:"pages"`
	TotalDownloaded int       `yaml:"total_downloaded"`
	StartedAt       time.Time `yaml:"started_at"`
	FinishedAt      time.Time `yaml:"finished_at"`
	Completed       bool      `yaml:"completed"`
}

// resumeState is the reconstructed position of an interrupted run.
type resumeState struct {
	cursor     string
	page       int
	total      int
	appendMode bool
}

// Run executes the pagination loop for cfg and returns the run summary.
//
// A non-200 response stops the loop and is reported through the Result,
// not as an error; already-persisted pages stay on disk and the operator
// recovers by rerunning with the resume flag. Transport-level failures
// (DNS, timeouts) are returned as errors.
func Run(ctx context.Context, client *openalex.Client, cfg types.HarvestConfig, logger zerolog.Logger) (Result, error) {
	lay := NewLayout(cfg.OutDir, cfg.Year)
	if err := os.MkdirAll(lay.IterationsDir(), 0o755); err != nil {
		return Result{}, fmt.Errorf("creating output directories: %w", err)
	}

	st := resolveResume(lay, cfg.ResumeFromPage, logger)

	mode := os.O_CREATE | os.O_WRONLY
	if st.appendMode {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}
	mainFile, err := os.OpenFile(lay.CumulativePath(), mode, 0o644)
	if err != nil {
		return Result{}, fmt.Errorf("opening cumulative file: %w", err)
	}
	defer mainFile.Close()

	filter := openalex.WorksFilter(cfg.Year, cfg.CountryCode, cfg.MinReferences)
	started := time.Now().UTC()
	manifest := &Manifest{
		Year:            cfg.Year,
		Filter:          filter,
		LastPage:        st.page,
		NextCursor:      st.cursor,
		TotalDownloaded: st.total,
		StartedAt:       started,
	}

	cursor := st.cursor
	page := st.page
	total := st.total

	for {
		if cfg.MaxPages > 0 && page-st.page >= cfg.MaxPages {
			logger.Info().Int("pages", cfg.MaxPages).Msg("page cap reached")
			break
		}
		page++
		logger.Info().Int("page", page).Int("year", cfg.Year).Msg("fetching page")

		pageData, err := client.FetchPage(ctx, filter, cursor, cfg.PerPage)
		if err != nil {
			var se *openalex.StatusError
			if errors.As(err, &se) {
				// Single strike ends the run; flushed pages are durable.
				logger.Error().Int("status", se.Code).Int("page", page).Msg("page fetch failed, stopping run")
				res := Result{Total: total, Pages: page - 1, Stopped: true, StatusCode: se.Code}
				writeSummary(lay, cfg.Year, filter, started, res, false)
				return res, nil
			}
			return Result{Total: total, Pages: page - 1}, fmt.Errorf("fetching page %d: %w", page, err)
		}

		written, err := writePage(lay, page, pageData.Results, mainFile)
		if err != nil {
			return Result{Total: total, Pages: page - 1}, err
		}
		total += written
		logger.Info().Int("page", page).Int("saved", written).Int("total", total).Msg("saved page")

		next := pageData.Meta.NextCursor
		if next != "" {
			if err := os.WriteFile(lay.CursorPath(page), []byte(next), 0o644); err != nil {
				return Result{Total: total, Pages: page}, fmt.Errorf("writing cursor checkpoint: %w", err)
			}
			cursor = next
		}

		manifest.LastPage = page
		manifest.NextCursor = next
		manifest.TotalDownloaded = total
		if err := manifest.Save(lay.ManifestPath()); err != nil {
			return Result{Total: total, Pages: page}, err
		}

		if cfg.PageDelay > 0 {
			time.Sleep(cfg.PageDelay)
		}

		if next == "" {
			break
		}
	}

	res := Result{Total: total, Pages: page}
	writeSummary(lay, cfg.Year, filter, started, res, true)
	return res, nil
}

// resolveResume reconstructs cursor, page counter, and running total from
// the checkpoint files of a prior run. A missing checkpoint degrades to a
// fresh run; the original tooling did this silently, here it is at least
// logged.
func resolveResume(lay Layout, resumeFrom int, logger zerolog.Logger) resumeState {
	if resumeFrom <= 0 {
		return resumeState{cursor: openalex.FirstPageCursor}
	}

	lastPage := resumeFrom - 1
	data, err := os.ReadFile(lay.CursorPath(lastPage))
	if err != nil {
		logger.Warn().Int("resume_from", resumeFrom).Str("checkpoint", lay.CursorPath(lastPage)).
			Msg("resume checkpoint missing, starting fresh run")
		return resumeState{cursor: openalex.FirstPageCursor}
	}

	total := 0
	for i := 1; i <= lastPage; i++ {
		n, err := countLines(lay.PagePath(i))
		if err != nil {
			continue
		}
		total += n
	}

	logger.Info().Int("resume_from", resumeFrom).Int("recovered", total).Msg("resuming run")
	return resumeState{
		cursor:     strings.TrimSpace(string(data)),
		page:       lastPage,
		total:      total,
		appendMode: true,
	}
}

// writePage flattens every work in the page and writes one JSON line per
// record to both the page snapshot and the cumulative file.
func writePage(lay Layout, page int, works []openalex.Work, main io.Writer) (int, error) {
	iter, err := os.Create(lay.PagePath(page))
	if err != nil {
		return 0, fmt.Errorf("creating page file: %w", err)
	}
	defer iter.Close()

	buf := bufio.NewWriter(io.MultiWriter(iter, main))
	for i := range works {
		rec := flatten.Flatten(&works[i])
		line, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("encoding record %s: %w", rec.ID, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := buf.Flush(); err != nil {
		return 0, fmt.Errorf("flushing page %d: %w", page, err)
	}
	return len(works), nil
}

// writeSummary records the run outcome as YAML. Best effort: a summary
// write failure never masks the run result.
func writeSummary(lay Layout, year int, filter string, started time.Time, res Result, completed bool) {
	s := RunSummary{
		Year:            year,
		Filter:          filter,
		Pages:           res.Pages,
		TotalDownloaded: res.Total,
		StartedAt:       started,
		FinishedAt:      time.Now().UTC(),
		Completed:       completed,
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return
	}
	os.WriteFile(lay.SummaryPath(), data, 0o644)
}

// countLines counts newline-terminated records in path. Chunked so page
// files with arbitrarily long lines never blow a scanner token limit.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	buf := make([]byte, 64*1024)
	for {
		n, err := f.Read(buf)
		count += bytes.Count(buf[:n], []byte{'\n'})
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
	}
}
