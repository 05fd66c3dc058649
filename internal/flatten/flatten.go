// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package flatten projects a raw OpenAlex work into a denormalized record
// suitable for line-oriented storage. Flatten is pure: no I/O, no shared
// state, and missing nested structure degrades to empty or omitted output
// rather than an error.
package flatten

import (
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/openalex-harvest/internal/openalex"
)

// topKeywordCount is how many entries of the sorted keyword list are kept
// as top_keywords. The list is sorted before truncation, so "top" means
// alphabetical-first, not relevance-ranked; historical behavior, kept as-is.
const topKeywordCount = 5

// FlatRecord is the denormalized projection of one work. Field names
// match the established JSONL output exactly.
type FlatRecord struct {
	ID                        string       `json:"id"`
	Title                     string       `json:"title"`
	PublicationYear           int          `json:"publication_year"`
	CitedByCount              int          `json:"cited_by_count"`
	ReferencedWorksCount      int          `json:"referenced_works_count"`
	Type                      string       `json:"type"`
	Authors                   []FlatAuthor `json:"authors"`
	AuthorsCount              int          `json:"authors_count"`
	InstitutionsCount         int          `json:"institutions_count"`
	Fields                    []string     `json:"fields"`
	Domains                   []string     `json:"domains"`
	Keywords                  []string     `json:"keywords"`
	IsMultidisciplinary       bool         `json:"is_multidisciplinary"`
	TopKeywords               []string     `json:"top_keywords"`
	CitationPerReferenceRatio float64      `json:"citation_per_reference_ratio"`
	Journal                   *Journal     `json:"journal,omitempty"`
	ResearchTopic             string       `json:"research_topic"`
}

type FlatAuthor struct {
	AuthorID     string            `json:"author_id"`
	AuthorName   string            `json:"author_name"`
	ORCID        string            `json:"orcid"`
	Position     string            `json:"position"`
	Institutions []FlatInstitution `json:"institutions"`
}

type FlatInstitution struct {
	InstitutionID   string `json:"institution_id"`
	InstitutionName string `json:"institution_name"`
	Country         string `json:"country"`
	Type            string `json:"type"`
}

// Journal is the primary-location source projection. Present in the
// output only when the work exposes a source object.
type Journal struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	ISSN []string `json:"issn"`
	IsOA bool     `json:"is_oa"`
}

// Flatten derives the flat record for one raw work.
func Flatten(work *openalex.Work) FlatRecord {
	rec := FlatRecord{
		ID:                   work.ID,
		Title:                work.DisplayName,
		PublicationYear:      work.PublicationYear,
		CitedByCount:         work.CitedByCount,
		ReferencedWorksCount: work.ReferencedWorksCount,
		Type:                 work.Type,
	}

	// Authors, plus the distinct-institution-name set shared across all
	// authorships. The set feeds only a count; order does not matter.
	rec.Authors = make([]FlatAuthor, 0, len(work.Authorships))
	institutions := make(map[string]struct{})
	for _, auth := range work.Authorships {
		fa := FlatAuthor{
			AuthorID:     auth.Author.ID,
			AuthorName:   auth.Author.DisplayName,
			ORCID:        auth.Author.ORCID,
			Position:     auth.AuthorPosition,
			Institutions: make([]FlatInstitution, 0, len(auth.Institutions)),
		}
		for _, inst := range auth.Institutions {
			fa.Institutions = append(fa.Institutions, FlatInstitution{
				InstitutionID:   inst.ID,
				InstitutionName: inst.DisplayName,
				Country:         inst.Country,
				Type:            inst.Type,
			})
			if inst.DisplayName != "" {
				institutions[inst.DisplayName] = struct{}{}
			}
		}
		rec.Authors = append(rec.Authors, fa)
	}
	rec.AuthorsCount = len(rec.Authors)
	rec.InstitutionsCount = len(institutions)

	var fields, domains []string
	for _, topic := range work.Topics {
		if topic.Field.DisplayName != "" {
			fields = append(fields, topic.Field.DisplayName)
		}
		if topic.Domain.DisplayName != "" {
			domains = append(domains, topic.Domain.DisplayName)
		}
	}

	// Concepts are the preferred keyword source; the keywords collection
	// is consulted only when no concepts are present at all.
	var keywords []string
	for _, c := range work.Concepts {
		if c.DisplayName != "" {
			keywords = append(keywords, c.DisplayName)
		}
	}
	if len(work.Concepts) == 0 {
		for _, k := range work.Keywords {
			if k.Keyword != "" {
				keywords = append(keywords, k.Keyword)
			}
		}
	}

	rec.Fields = sortedSet(fields)
	rec.Domains = sortedSet(domains)
	rec.Keywords = sortedSet(keywords)
	rec.IsMultidisciplinary = len(rec.Fields) > 1
	rec.TopKeywords = rec.Keywords
	if len(rec.TopKeywords) > topKeywordCount {
		rec.TopKeywords = rec.TopKeywords[:topKeywordCount]
	}

	// Missing or zero reference count is floored to 1 so the ratio never
	// divides by zero.
	refs := rec.ReferencedWorksCount
	if refs < 1 {
		refs = 1
	}
	rec.CitationPerReferenceRatio = round3(float64(rec.CitedByCount) / float64(refs))

	if src := work.PrimaryLocation.Source; src != nil {
		rec.Journal = &Journal{
			Name: src.DisplayName,
			Type: src.Type,
			ISSN: src.ISSN,
			IsOA: src.IsOA,
		}
	}

	rec.ResearchTopic = researchTopic(rec.Title, rec.Fields, rec.Domains, rec.TopKeywords)
	return rec
}

// researchTopic joins the non-empty parts with " | ", list parts joined
// with ", ". Part order is fixed: title, fields, domains, top keywords.
func researchTopic(title string, fields, domains, topKeywords []string) string {
	parts := []string{
		title,
		strings.Join(fields, ", "),
		strings.Join(domains, ", "),
		strings.Join(topKeywords, ", "),
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " | ")
}

// sortedSet deduplicates and sorts ascending. Always returns a non-nil
// slice so the JSON output carries [] rather than null.
func sortedSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
