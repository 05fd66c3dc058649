// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds configuration shared across the harvest pipeline.
package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "openalex-harvest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Mailto is the email sent as the mailto parameter for OpenAlex
	// polite pool access. Empty disables the parameter.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`
}

// HarvestConfig holds settings for the fetch stage.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline"`

	// Year selects the publication year filter. Required.
	Year int `json:"year" yaml:"year"`

	// ResumeFromPage requests resumption of a previously interrupted run
	// starting at this page number. Zero means a fresh run.
	ResumeFromPage int `json:"resume_from_page,omitempty" yaml:"resume_from_page,omitempty"`

	// OutDir is the base directory under which the year-scoped output
	// tree (articles_{year}_new/) is created. Default ".".
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// PerPage is the page size requested from the API (default 200,
	// the OpenAlex maximum).
	PerPage int `json:"per_page" yaml:"per_page"`

	// PageDelay is the pause after each successful page fetch (default 1s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// CountryCode filters works to institutions in this country (default "us").
	CountryCode string `json:"country_code" yaml:"country_code"`

	// MinReferences filters works to those citing more than this many
	// references (default 10).
	MinReferences int `json:"min_references" yaml:"min_references"`

	// MaxPages caps the number of pages fetched in one run. Zero means
	// no cap (run until the source reports no further cursor).
	MaxPages int `json:"max_pages,omitempty" yaml:"max_pages,omitempty"`
}

// IndexConfig holds settings for the SQLite index stage.
type IndexConfig struct {
	// DBPath is the SQLite database file (default
	// "{yearDir}/index/works.db").
	DBPath string `json:"db_path" yaml:"db_path"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
