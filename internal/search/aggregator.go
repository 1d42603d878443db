package search

import (
	"strings"

	"github.com/openshelf/elibrary/internal/entities"
)

// BookSource is the slice of the catalog the aggregator needs to turn index
// hits into books.
type BookSource interface {
	// GetBooksByIDs fetches books preserving the given order, skipping ids
	// the store no longer knows (stale index hits).
	GetBooksByIDs(ids []uint) ([]entities.Book, error)

	// ListBooksByAuthor returns an author's books in book id order.
	ListBooksByAuthor(authorID uint) ([]entities.Book, error)
}

// Aggregator merges title-index and author-index hits into a single ranked
// book sequence.
type Aggregator struct {
	index      *Index
	books      BookSource
	maxResults int
}

func NewAggregator(index *Index, books BookSource, maxResults int) *Aggregator {
	if maxResults <= 0 {
		maxResults = 50
	}
	return &Aggregator{index: index, books: books, maxResults: maxResults}
}

// Search returns title hits in index rank order, followed by the books of
// every matching author (per author, in book id order). The sequence is
// not de-duplicated: a book matching both its own title and its author's
// name appears twice.
func (a *Aggregator) Search(query string) ([]entities.Book, error) {
	if strings.TrimSpace(query) == "" {
		return []entities.Book{}, nil
	}

	titleIDs, err := a.index.MatchBooks(query, a.maxResults)
	if err != nil {
		return nil, err
	}
	results, err := a.books.GetBooksByIDs(titleIDs)
	if err != nil {
		return nil, err
	}

	authorIDs, err := a.index.MatchAuthors(query, a.maxResults)
	if err != nil {
		return nil, err
	}
	for _, authorID := range authorIDs {
		byAuthor, err := a.books.ListBooksByAuthor(authorID)
		if err != nil {
			return nil, err
		}
		results = append(results, byAuthor...)
	}
	return results, nil
}
