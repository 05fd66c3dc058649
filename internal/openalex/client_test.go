// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/openalex-harvest/pkg/types"
)

func TestWorksFilter(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		country string
		minRefs int
		want    string
	}{
		{"defaults", 2023, "us", 10, "publication_year:2023,institutions.country_code:us,referenced_works_count:>10"},
		{"other country", 2019, "de", 0, "publication_year:2019,institutions.country_code:de,referenced_works_count:>0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WorksFilter(tt.year, tt.country, tt.minRefs)
			if got != tt.want {
				t.Errorf("WorksFilter() = %q, want %q", got, tt.want)
			}
		})
	}
}

const samplePageJSON = `{
  "meta": {"count": 2, "per_page": 200, "next_cursor": "IlsxNjA5MzcyODAwMDAwIl0i"},
  "results": [
    {
      "id": "https://openalex.org/W1",
      "display_name": "Attention Is All You Need",
      "publication_year": 2017,
      "cited_by_count": 120000,
      "referenced_works_count": 35,
      "type": "article",
      "authorships": [
        {
          "author": {"id": "A1", "display_name": "Ashish Vaswani", "orcid": null},
          "author_position": "first",
          "institutions": [
            {"id": "I1", "display_name": "Google", "country": "US", "type": "company"}
          ]
        }
      ],
      "topics": [
        {"display_name": "Neural Machine Translation",
         "field": {"id": "F17", "display_name": "Computer Science"},
         "domain": {"id": "D3", "display_name": "Physical Sciences"}}
      ],
      "concepts": [
        {"id": "C1", "display_name": "Transformer", "score": 0.9}
      ],
      "primary_location": {
        "is_oa": true,
        "source": {"id": "S1", "display_name": "NeurIPS", "type": "conference",
                   "issn": ["1049-5258"], "is_oa": false}
      }
    },
    {
      "id": "https://openalex.org/W2",
      "display_name": "A Sparse Work",
      "primary_location": {"is_oa": false, "source": null}
    }
  ]
}`

func TestFetchPage(t *testing.T) {
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		gotQuery["user-agent"] = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePageJSON))
	}))
	defer ts.Close()

	c := NewClient(ts.Client(), types.HTTPConfig{UserAgent: "openalex-harvest/test", Mailto: "ops@example.org"})
	c.BaseURL = ts.URL

	page, err := c.FetchPage(context.Background(), WorksFilter(2017, "us", 10), FirstPageCursor, 200)
	require.NoError(t, err)

	assert.Equal(t, "publication_year:2017,institutions.country_code:us,referenced_works_count:>10", gotQuery["filter"])
	assert.Equal(t, "200", gotQuery["per-page"])
	assert.Equal(t, "*", gotQuery["cursor"])
	assert.Equal(t, "ops@example.org", gotQuery["mailto"])
	assert.Equal(t, "openalex-harvest/test", gotQuery["user-agent"])

	assert.Equal(t, "IlsxNjA5MzcyODAwMDAwIl0i", page.Meta.NextCursor)
	require.Len(t, page.Results, 2)

	w1 := page.Results[0]
	assert.Equal(t, "https://openalex.org/W1", w1.ID)
	assert.Equal(t, "Attention Is All You Need", w1.DisplayName)
	assert.Equal(t, 2017, w1.PublicationYear)
	require.Len(t, w1.Authorships, 1)
	assert.Equal(t, "first", w1.Authorships[0].AuthorPosition)
	require.Len(t, w1.Authorships[0].Institutions, 1)
	assert.Equal(t, "Google", w1.Authorships[0].Institutions[0].DisplayName)
	require.NotNil(t, w1.PrimaryLocation.Source)
	assert.Equal(t, []string{"1049-5258"}, w1.PrimaryLocation.Source.ISSN)

	// Sparse works decode to zero values, never an error.
	w2 := page.Results[1]
	assert.Empty(t, w2.Authorships)
	assert.Nil(t, w2.PrimaryLocation.Source)
}

func TestFetchPageStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	c := NewClient(ts.Client(), types.HTTPConfig{})
	c.BaseURL = ts.URL

	_, err := c.FetchPage(context.Background(), "publication_year:2023", FirstPageCursor, 200)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.Code)
}

func TestFetchPageEmptyCursorOnLastPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"meta": {"count": 0, "per_page": 200, "next_cursor": null}, "results": []}`))
	}))
	defer ts.Close()

	c := NewClient(ts.Client(), types.HTTPConfig{})
	c.BaseURL = ts.URL

	page, err := c.FetchPage(context.Background(), "publication_year:2023", "abc", 200)
	require.NoError(t, err)
	assert.Empty(t, page.Meta.NextCursor)
	assert.Empty(t, page.Results)
}
