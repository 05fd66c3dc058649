// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "index", "works.db"), 20)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeJSONL(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "all_articles_enhanced.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

const (
	recTransformer = `{"id":"W1","title":"Attention Is All You Need","publication_year":2017,"cited_by_count":100,"referenced_works_count":40,"type":"article","authors":[],"authors_count":0,"institutions_count":0,"fields":["Computer Science"],"domains":[],"keywords":[],"is_multidisciplinary":false,"top_keywords":["attention","transformer"],"citation_per_reference_ratio":2.5,"research_topic":"Attention Is All You Need | Computer Science | attention, transformer"}`
	recBio         = `{"id":"W2","title":"Protein Folding","publication_year":2021,"cited_by_count":10,"referenced_works_count":20,"type":"article","authors":[],"authors_count":3,"institutions_count":2,"fields":["Biology","Computer Science"],"domains":["Life Sciences"],"keywords":[],"is_multidisciplinary":true,"top_keywords":["folding"],"citation_per_reference_ratio":0.5,"journal":{"name":"Nature","type":"journal","issn":["0028-0836"],"is_oa":false},"research_topic":"Protein Folding | Biology, Computer Science | Life Sciences | folding"}`
)

func TestLoadAndAggregate(t *testing.T) {
	s := testStore(t)
	path := writeJSONL(t, recTransformer, recBio)

	sum, err := s.Load(context.Background(), path, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Inserted)
	assert.Equal(t, 0, sum.Replaced)
	assert.Equal(t, 0, sum.Failed)
	assert.Equal(t, 2, sum.Total())

	st, err := s.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.Works)
	assert.Equal(t, 1, st.Multidisciplinary)
	assert.InDelta(t, 1.5, st.MeanCitationRatio, 1e-9)
}

func TestLoadIdempotentReplace(t *testing.T) {
	s := testStore(t)

	// The same id twice in one file: a resumed run re-appending a page.
	sum, err := s.Load(context.Background(), writeJSONL(t, recTransformer, recTransformer), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Inserted)
	assert.Equal(t, 1, sum.Replaced)

	st, err := s.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.Works)
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	s := testStore(t)
	var out strings.Builder

	sum, err := s.Load(context.Background(), writeJSONL(t, recTransformer, "{broken", recBio), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Inserted)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 3, sum.Total())
	assert.Contains(t, out.String(), "skipped line 2")
}

func TestLoadMissingFile(t *testing.T) {
	s := testStore(t)
	_, err := s.Load(context.Background(), filepath.Join(t.TempDir(), "nope.jsonl"), io.Discard)
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	s := testStore(t)
	_, err := s.Load(context.Background(), writeJSONL(t, recTransformer, recBio), io.Discard)
	require.NoError(t, err)

	results, err := s.Search(context.Background(), "transformer", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "W1", results[0].ID)
	assert.Equal(t, 2017, results[0].PublicationYear)

	results, err = s.Search(context.Background(), "folding", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Protein Folding", results[0].Title)

	results, err = s.Search(context.Background(), "quantum", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchAfterReplaceStaysInSync(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Load(ctx, writeJSONL(t, recTransformer), io.Discard)
	require.NoError(t, err)

	updated := strings.Replace(recTransformer, "Attention Is All You Need", "Sparse Attention Revisited", 2)
	_, err = s.Load(ctx, writeJSONL(t, updated), io.Discard)
	require.NoError(t, err)

	results, err := s.Search(ctx, "sparse", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	results, err = s.Search(ctx, "need", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
