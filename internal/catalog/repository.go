// Package catalog implements the authoritative store for books, authors,
// years, users and roles, including the shelf (user-book) and authorship
// (book-author) relations. Callers are expected to enforce permissions at the
// boundary; the repository trusts its caller.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openshelf/elibrary/internal/entities"
)

// ErrNotFound is returned whenever a referenced user, book, author or year
// does not exist. Surfaced at the boundary as a user-visible 404.
var ErrNotFound = errors.New("record not found")

// Config carries the externally configured knobs of the repository.
type Config struct {
	// PerPage is the catalog page size.
	PerPage int

	// ErrorOutOfRange makes ListBooks treat a page request beyond the valid
	// range as ErrNotFound instead of returning an empty page.
	ErrorOutOfRange bool
}

// Repository is the Catalog Store over a GORM SQLite database.
type Repository struct {
	db  *gorm.DB
	cfg Config
}

func NewRepository(db *gorm.DB, cfg Config) *Repository {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 20
	}
	return &Repository{db: db, cfg: cfg}
}

// PerPage exposes the configured page size to the presentation layer.
func (r *Repository) PerPage() int {
	return r.cfg.PerPage
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ListBooks returns one page of the catalog in stable id order, together
// with the total book count. With ErrorOutOfRange enabled a non-zero offset
// past the end of the catalog yields ErrNotFound; otherwise the page is
// simply empty.
func (r *Repository) ListBooks(offset, limit int) ([]entities.Book, int64, error) {
	if offset < 0 {
		offset = 0
	}
	var total int64
	if err := r.db.Model(&entities.Book{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}
	if r.cfg.ErrorOutOfRange && offset > 0 && int64(offset) >= total {
		return nil, total, ErrNotFound
	}

	var books []entities.Book
	err := r.db.Preload("Authors").Preload("Year").
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&books).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	return books, total, nil
}

// GetBook retrieves a book with its authors and year.
func (r *Repository) GetBook(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Authors").Preload("Year").First(&book, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &book, nil
}

// GetBooksByIDs fetches books preserving the order of ids. Unknown ids are
// skipped; the search index may be stale relative to the store.
func (r *Repository) GetBooksByIDs(ids []uint) ([]entities.Book, error) {
	if len(ids) == 0 {
		return []entities.Book{}, nil
	}
	var books []entities.Book
	err := r.db.Preload("Authors").Preload("Year").Find(&books, ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch books: %w", err)
	}
	byID := make(map[uint]entities.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	ordered := make([]entities.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
		}
	}
	return ordered, nil
}

// ListBooksByAuthor returns all books written by the author in id order.
func (r *Repository) ListBooksByAuthor(authorID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Authors").Preload("Year").
		Joins("JOIN book_author_reg ON book_author_reg.book_id = books.id").
		Where("book_author_reg.author_id = ?", authorID).
		Order("books.id ASC").
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list books by author: %w", err)
	}
	return books, nil
}

// ListBooksByYear returns all books published in the given year row.
func (r *Repository) ListBooksByYear(yearID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Authors").Preload("Year").
		Where("year_id = ?", yearID).
		Order("id ASC").
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list books by year: %w", err)
	}
	return books, nil
}

// BookFields is the admin add/edit input for UpsertBook. A zero ID creates a
// new book.
type BookFields struct {
	ID          uint
	Name        string
	Description string
	ImgURL      string

	// AuthorList is the comma-separated author string from the admin form,
	// split on a literal ", ". Author names containing that separator cannot
	// be expressed; matching is by exact string equality, so differently
	// punctuated spellings of the same author become distinct rows. Known
	// limitation, kept for compatibility with the existing catalog.
	AuthorList string

	Year int
}

// SplitAuthors splits the admin form's author string into individual names.
func SplitAuthors(list string) []string {
	parts := strings.Split(list, ", ")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

// UpsertBook creates or updates a book in a single transaction: authors that
// do not yet exist are created, the year row is created if missing, and the
// book's author set is replaced with exactly the resolved authors. A partial
// failure rolls everything back.
func (r *Repository) UpsertBook(fields BookFields) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if fields.ID != 0 {
			if err := tx.First(&book, fields.ID).Error; err != nil {
				return translate(err)
			}
		}

		authors := make([]entities.Author, 0)
		for _, name := range SplitAuthors(fields.AuthorList) {
			var author entities.Author
			err := tx.Where("name = ?", name).First(&author).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				author = entities.Author{Name: name}
				if err := tx.Create(&author).Error; err != nil {
					return fmt.Errorf("failed to create author %q: %w", name, err)
				}
			} else if err != nil {
				return fmt.Errorf("failed to look up author %q: %w", name, err)
			}
			authors = append(authors, author)
		}

		var year entities.Year
		err := tx.Where("year = ?", fields.Year).First(&year).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			year = entities.Year{Year: fields.Year}
			if err := tx.Create(&year).Error; err != nil {
				return fmt.Errorf("failed to create year %d: %w", fields.Year, err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to look up year %d: %w", fields.Year, err)
		}

		book.Name = fields.Name
		book.Description = fields.Description
		book.ImgURL = fields.ImgURL
		book.YearID = year.ID
		if err := tx.Omit(clause.Associations).Save(&book).Error; err != nil {
			return fmt.Errorf("failed to save book: %w", err)
		}

		// Replace, not append: authors dropped from the list are detached
		// from the book but never deleted globally.
		if err := tx.Model(&book).Association("Authors").Replace(&authors); err != nil {
			return fmt.Errorf("failed to replace author set: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetBook(book.ID)
}

// DeleteBook removes the book and its membership rows in both join tables.
// Shelving users and authors survive the deletion.
func (r *Repository) DeleteBook(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&book).Association("Authors").Clear(); err != nil {
			return fmt.Errorf("failed to detach authors: %w", err)
		}
		if err := tx.Model(&book).Association("Users").Clear(); err != nil {
			return fmt.Errorf("failed to detach shelving users: %w", err)
		}
		if err := tx.Delete(&book).Error; err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}
		return nil
	})
}

// CountBooks returns the total number of books in the catalog.
func (r *Repository) CountBooks() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// ListAllBooks returns id and name of every book, for index builds.
func (r *Repository) ListAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Select("id", "name").Order("id ASC").Find(&books).Error
	return books, err
}

// ListAuthors returns every author, for index builds.
func (r *Repository) ListAuthors() ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.Select("id", "name").Order("id ASC").Find(&authors).Error
	return authors, err
}
