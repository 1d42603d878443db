package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_ShelveBook(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, db, "reader")
	book, err := repo.UpsertBook(BookFields{Name: "Mort", AuthorList: "Terry Pratchett", Year: 1987})
	require.NoError(t, err)

	require.NoError(t, repo.ShelveBook(user.ID, book.ID))

	shelved, err := repo.IsShelved(user.ID, book.ID)
	require.NoError(t, err)
	assert.True(t, shelved)
}

func TestRepository_ShelveBook_Idempotent(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, db, "reader")
	book, err := repo.UpsertBook(BookFields{Name: "Mort", AuthorList: "Terry Pratchett", Year: 1987})
	require.NoError(t, err)

	require.NoError(t, repo.ShelveBook(user.ID, book.ID))
	require.NoError(t, repo.ShelveBook(user.ID, book.ID))

	var count int64
	require.NoError(t, db.Table("user_book_reg").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepository_ShelveBook_UnknownBook(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, db, "reader")

	err := repo.ShelveBook(user.ID, 999)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_ShelveBook_UnknownUser(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	book, err := repo.UpsertBook(BookFields{Name: "Mort", AuthorList: "Terry Pratchett", Year: 1987})
	require.NoError(t, err)

	err = repo.ShelveBook(999, book.ID)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_UnshelveBook(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, db, "reader")
	book, err := repo.UpsertBook(BookFields{Name: "Mort", AuthorList: "Terry Pratchett", Year: 1987})
	require.NoError(t, err)
	require.NoError(t, repo.ShelveBook(user.ID, book.ID))

	require.NoError(t, repo.UnshelveBook(user.ID, book.ID))

	shelved, err := repo.IsShelved(user.ID, book.ID)
	require.NoError(t, err)
	assert.False(t, shelved)
}

func TestRepository_UnshelveBook_NotShelvedIsNoOp(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, db, "reader")
	book, err := repo.UpsertBook(BookFields{Name: "Mort", AuthorList: "Terry Pratchett", Year: 1987})
	require.NoError(t, err)

	assert.NoError(t, repo.UnshelveBook(user.ID, book.ID))
}

func TestRepository_ListShelvedBooks_IDOrder(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, db, "reader")
	first, err := repo.UpsertBook(BookFields{Name: "Mort", AuthorList: "Terry Pratchett", Year: 1987})
	require.NoError(t, err)
	second, err := repo.UpsertBook(BookFields{Name: "Coraline", AuthorList: "Neil Gaiman", Year: 2002})
	require.NoError(t, err)

	// Shelve in reverse; listing still comes back in id order.
	require.NoError(t, repo.ShelveBook(user.ID, second.ID))
	require.NoError(t, repo.ShelveBook(user.ID, first.ID))

	shelf, err := repo.ListShelvedBooks(user.ID)
	require.NoError(t, err)
	require.Len(t, shelf, 2)
	assert.Equal(t, first.ID, shelf[0].ID)
	assert.Equal(t, second.ID, shelf[1].ID)
}

func TestRepository_ShelvesAreIndependent(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	book, err := repo.UpsertBook(BookFields{Name: "Mort", AuthorList: "Terry Pratchett", Year: 1987})
	require.NoError(t, err)

	require.NoError(t, repo.ShelveBook(alice.ID, book.ID))

	shelved, err := repo.IsShelved(bob.ID, book.ID)
	require.NoError(t, err)
	assert.False(t, shelved)
}
