package catalog

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/openshelf/elibrary/internal/entities"
)

// ShelveBook adds the book to the user's shelf. Adding an already shelved
// book is a no-op: membership is checked inside the same transaction as the
// insert, so a duplicate add can never surface a constraint violation.
func (r *Repository) ShelveBook(userID, bookID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		user, book, err := loadShelfPair(tx, userID, bookID)
		if err != nil {
			return err
		}
		shelved, err := isShelved(tx, userID, bookID)
		if err != nil {
			return err
		}
		if shelved {
			return nil
		}
		if err := tx.Model(user).Association("Books").Append(book); err != nil {
			return fmt.Errorf("failed to shelve book: %w", err)
		}
		return nil
	})
}

// UnshelveBook removes the book from the user's shelf. Removing a book that
// is not shelved is a no-op.
func (r *Repository) UnshelveBook(userID, bookID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		user, book, err := loadShelfPair(tx, userID, bookID)
		if err != nil {
			return err
		}
		if err := tx.Model(user).Association("Books").Delete(book); err != nil {
			return fmt.Errorf("failed to unshelve book: %w", err)
		}
		return nil
	})
}

// IsShelved reports whether the book is on the user's shelf.
func (r *Repository) IsShelved(userID, bookID uint) (bool, error) {
	return isShelved(r.db, userID, bookID)
}

// ListShelvedBooks returns the user's shelf in book id order.
func (r *Repository) ListShelvedBooks(userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Authors").Preload("Year").
		Joins("JOIN user_book_reg ON user_book_reg.book_id = books.id").
		Where("user_book_reg.user_id = ?", userID).
		Order("books.id ASC").
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shelf: %w", err)
	}
	return books, nil
}

func isShelved(db *gorm.DB, userID, bookID uint) (bool, error) {
	var count int64
	err := db.Table("user_book_reg").
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check shelf membership: %w", err)
	}
	return count > 0, nil
}

func loadShelfPair(tx *gorm.DB, userID, bookID uint) (*entities.User, *entities.Book, error) {
	var user entities.User
	if err := tx.First(&user, userID).Error; err != nil {
		return nil, nil, translate(err)
	}
	var book entities.Book
	if err := tx.First(&book, bookID).Error; err != nil {
		return nil, nil, translate(err)
	}
	return &user, &book, nil
}
