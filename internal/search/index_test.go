package search

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIndex(t *testing.T, snap Snapshot) *Index {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	index, err := BuildIndex(db, snap)
	require.NoError(t, err)
	return index
}

func TestIndex_MatchBooks(t *testing.T) {
	index := setupIndex(t, Snapshot{
		Books: []IndexEntry{
			{ID: 1, Name: "The Colour of Magic"},
			{ID: 2, Name: "Good Omens"},
			{ID: 3, Name: "A Wizard of Earthsea"},
		},
	})

	ids, err := index.MatchBooks("magic", 10)

	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)
}

func TestIndex_MatchBooks_MultipleTermsAreANDed(t *testing.T) {
	index := setupIndex(t, Snapshot{
		Books: []IndexEntry{
			{ID: 1, Name: "The Colour of Magic"},
			{ID: 2, Name: "The Light Fantastic"},
		},
	})

	ids, err := index.MatchBooks("colour magic", 10)

	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)
}

func TestIndex_MatchBooks_NoHits(t *testing.T) {
	index := setupIndex(t, Snapshot{
		Books: []IndexEntry{{ID: 1, Name: "Mort"}},
	})

	ids, err := index.MatchBooks("nonexistent", 10)

	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestIndex_MatchBooks_Limit(t *testing.T) {
	index := setupIndex(t, Snapshot{
		Books: []IndexEntry{
			{ID: 1, Name: "Magic One"},
			{ID: 2, Name: "Magic Two"},
			{ID: 3, Name: "Magic Three"},
		},
	})

	ids, err := index.MatchBooks("magic", 2)

	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestIndex_MatchAuthors(t *testing.T) {
	index := setupIndex(t, Snapshot{
		Authors: []IndexEntry{
			{ID: 5, Name: "Terry Pratchett"},
			{ID: 6, Name: "Neil Gaiman"},
		},
	})

	ids, err := index.MatchAuthors("pratchett", 10)

	require.NoError(t, err)
	assert.Equal(t, []uint{5}, ids)
}

func TestIndex_PunctuationIsNotQuerySyntax(t *testing.T) {
	index := setupIndex(t, Snapshot{
		Books: []IndexEntry{{ID: 1, Name: "Mort"}},
	})

	// FTS5 operators and stray quotes in user input must not produce a
	// query parse error.
	for _, q := range []string{`mort OR`, `"mort`, `mort*`, `(mort)`, `-`} {
		_, err := index.MatchBooks(q, 10)
		assert.NoError(t, err, "query %q", q)
	}
}

func TestBuildIndex_ReplacesPreviousContents(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = BuildIndex(db, Snapshot{Books: []IndexEntry{{ID: 1, Name: "Mort"}}})
	require.NoError(t, err)

	index, err := BuildIndex(db, Snapshot{Books: []IndexEntry{{ID: 2, Name: "Coraline"}}})
	require.NoError(t, err)

	ids, err := index.MatchBooks("mort", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = index.MatchBooks("coraline", 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, ids)
}

func TestFTSQuery(t *testing.T) {
	assert.Equal(t, `"mort"`, ftsQuery("mort"))
	assert.Equal(t, `"colour" "magic"`, ftsQuery("colour magic"))
	assert.Equal(t, `"say" """"`, ftsQuery(`say "`))
	assert.Equal(t, "", ftsQuery("   "))
}
