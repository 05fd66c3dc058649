// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"path/filepath"
)

// Layout maps the year-scoped output tree:
//
//	{outDir}/articles_{year}_new/
//	    all_articles_enhanced.jsonl
//	    manifest.json
//	    run.yaml
//	    iterations/articles_page_{N}.jsonl
//	    iterations/cursor_after_page_{N}.txt
//	    index/works.db
type Layout struct {
	dir string
}

// NewLayout returns the layout rooted at outDir for year.
func NewLayout(outDir string, year int) Layout {
	return Layout{dir: filepath.Join(outDir, fmt.Sprintf("articles_%d_new", year))}
}

// Dir returns the year-scoped base directory.
func (l Layout) Dir() string { return l.dir }

// CumulativePath returns the cumulative JSONL output file.
func (l Layout) CumulativePath() string {
	return filepath.Join(l.dir, "all_articles_enhanced.jsonl")
}

// IterationsDir returns the per-page snapshot directory.
func (l Layout) IterationsDir() string {
	return filepath.Join(l.dir, "iterations")
}

// PagePath returns the snapshot file for page n.
func (l Layout) PagePath(n int) string {
	return filepath.Join(l.IterationsDir(), fmt.Sprintf("articles_page_%d.jsonl", n))
}

// CursorPath returns the checkpoint file holding the cursor issued after
// page n was fetched.
func (l Layout) CursorPath(n int) string {
	return filepath.Join(l.IterationsDir(), fmt.Sprintf("cursor_after_page_%d.txt", n))
}

// ManifestPath returns the run manifest file.
func (l Layout) ManifestPath() string {
	return filepath.Join(l.dir, "manifest.json")
}

// SummaryPath returns the YAML run summary file.
func (l Layout) SummaryPath() string {
	return filepath.Join(l.dir, "run.yaml")
}

// IndexDBPath returns the default SQLite index location.
func (l Layout) IndexDBPath() string {
	return filepath.Join(l.dir, "index", "works.db")
}
