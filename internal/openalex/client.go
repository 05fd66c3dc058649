// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openalex is a minimal client for the OpenAlex Works API:
// cursor-paginated listing with a typed response schema.
package openalex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/segmentio/encoding/json"

	"github.com/pdiddy/openalex-harvest/pkg/types"
)

// DefaultBaseURL is the OpenAlex Works endpoint.
const DefaultBaseURL = "https://api.openalex.org/works"

// FirstPageCursor selects the first page of a cursor-paginated listing.
const FirstPageCursor = "*"

// StatusError reports a non-200 response from the API. The pager treats
// any status error as the end of the run; nothing is retried.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openalex: HTTP %d", e.Code)
}

// Client fetches pages from the Works API.
type Client struct {
	HTTP *http.Client
	// BaseURL overrides the Works endpoint; tests point it at an
	// httptest server. Empty means DefaultBaseURL.
	BaseURL   string
	UserAgent string
	// Mailto is sent as the mailto parameter for polite pool access.
	Mailto string
}

// NewClient returns a Client configured from cfg.
func NewClient(httpClient *http.Client, cfg types.HTTPConfig) *Client {
	return &Client{
		HTTP:      httpClient,
		UserAgent: cfg.UserAgent,
		Mailto:    cfg.Mailto,
	}
}

// WorksFilter builds the filter expression selecting works published in
// year, affiliated with an institution in countryCode, and citing more
// than minRefs references.
func WorksFilter(year int, countryCode string, minRefs int) string {
	return fmt.Sprintf("publication_year:%d,institutions.country_code:%s,referenced_works_count:>%d",
		year, countryCode, minRefs)
}

// FetchPage issues one GET for the page identified by cursor and decodes
// the response. A non-200 status yields a *StatusError with the body
// discarded; the caller decides whether the run continues.
func (c *Client) FetchPage(ctx context.Context, filter, cursor string, perPage int) (*WorksPage, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	params := url.Values{
		"filter":   {filter},
		"per-page": {strconv.Itoa(perPage)},
		"cursor":   {cursor},
	}
	if c.Mailto != "" {
		params.Set("mailto", c.Mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("works request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var page WorksPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("parsing works response: %w", err)
	}
	return &page, nil
}
