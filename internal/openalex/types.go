// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

// OpenAlex Works API JSON structures. Only the subset the harvest
// pipeline consumes is modeled; unknown fields are ignored on decode.
// Every nested object is reachable through slices or value structs so a
// sparse work decodes to zero values rather than failing.

// WorksPage is one page of the /works listing.
type WorksPage struct {
	Meta    Meta   `json:"meta"`
	Results []Work `json:"results"`
}

// Meta carries pagination state. NextCursor is empty on the final page.
type Meta struct {
	Count      int    `json:"count"`
	PerPage    int    `json:"per_page"`
	NextCursor string `json:"next_cursor"`
}

// Work is one bibliographic record.
type Work struct {
	ID                   string          `json:"id"`
	DisplayName          string          `json:"display_name"`
	PublicationYear      int             `json:"publication_year"`
	CitedByCount         int             `json:"cited_by_count"`
	ReferencedWorksCount int             `json:"referenced_works_count"`
	Type                 string          `json:"type"`
	Authorships          []Authorship    `json:"authorships"`
	Topics               []Topic         `json:"topics"`
	Concepts             []Concept       `json:"concepts"`
	Keywords             []Keyword       `json:"keywords"`
	PrimaryLocation      PrimaryLocation `json:"primary_location"`
}

// Authorship links an author to a work, with position and affiliations.
type Authorship struct {
	Author         Author        `json:"author"`
	AuthorPosition string        `json:"author_position"`
	Institutions   []Institution `json:"institutions"`
}

type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ORCID       string `json:"orcid"`
}

type Institution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Type        string `json:"type"`
}

// Topic is an assigned research topic with its field/domain lineage.
type Topic struct {
	DisplayName string `json:"display_name"`
	Field       Named  `json:"field"`
	Domain      Named  `json:"domain"`
}

// Named is a generic {id, display_name} pair.
type Named struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Concept is a legacy tagged concept; preferred keyword source.
type Concept struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

// Keyword is the newer keyword object; fallback when concepts are absent.
type Keyword struct {
	Keyword string  `json:"keyword"`
	Score   float64 `json:"score"`
}

// PrimaryLocation holds the hosting venue. Source is a pointer so a work
// without a resolvable venue carries nil rather than an empty journal.
type PrimaryLocation struct {
	IsOA   bool    `json:"is_oa"`
	Source *Source `json:"source"`
}

// Source describes the hosting journal or repository.
type Source struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Type        string   `json:"type"`
	ISSN        []string `json:"issn"`
	IsOA        bool     `json:"is_oa"`
}
