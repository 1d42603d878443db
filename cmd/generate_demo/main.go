// Command generate_demo creates a demo library database with public domain
// books and a few sample accounts.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/openshelf/elibrary/internal/auth"
	"github.com/openshelf/elibrary/internal/catalog"
	"github.com/openshelf/elibrary/internal/database"
	"github.com/openshelf/elibrary/internal/entities"
)

const defaultDemoDatabasePath = "./demo/demo.db"

// demoPassword is shared by every generated account. Demo data only.
const demoPassword = "bookworm-demo"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	store := catalog.NewRepository(db.DB, catalog.Config{PerPage: 20})

	if err := store.InsertDefaultRoles(); err != nil {
		log.Fatalf("Failed to insert roles: %v", err)
	}

	books := createBooks(store)
	users := createUsers(db, store)

	// Put a couple of books on each user's shelf
	for i, user := range users {
		for j, book := range books {
			if (i+j)%3 != 0 {
				continue
			}
			if err := store.ShelveBook(user.ID, book.ID); err != nil {
				log.Printf("Failed to shelve %s for %s: %v", book.Name, user.Username, err)
			}
		}
	}

	log.Println("Demo database generated successfully!")
}

func createBooks(store *catalog.Repository) []*entities.Book {
	fixtures := []catalog.BookFields{
		{
			Name:        "Meditations",
			AuthorList:  "Marcus Aurelius",
			Year:        180,
			Description: "Private reflections of a Roman emperor on duty, mortality and self-discipline.",
		},
		{
			Name:        "Pride and Prejudice",
			AuthorList:  "Jane Austen",
			Year:        1813,
			Description: "Elizabeth Bennet navigates manners, marriage and first impressions in Regency England.",
		},
		{
			Name:        "Frankenstein",
			AuthorList:  "Mary Shelley",
			Year:        1818,
			Description: "A scientist animates a creature and abandons it, with ruinous consequences.",
		},
		{
			Name:        "On the Origin of Species",
			AuthorList:  "Charles Darwin",
			Year:        1859,
			Description: "The foundational account of evolution by natural selection.",
		},
		{
			Name:        "Crime and Punishment",
			AuthorList:  "Fyodor Dostoevsky",
			Year:        1866,
			Description: "A destitute student commits a murder and unravels under his own conscience.",
		},
		{
			Name:        "War and Peace",
			AuthorList:  "Leo Tolstoy",
			Year:        1869,
			Description: "Five aristocratic families through the Napoleonic invasion of Russia.",
		},
		{
			Name:        "The Picture of Dorian Gray",
			AuthorList:  "Oscar Wilde",
			Year:        1890,
			Description: "A portrait ages so its subject does not have to.",
		},
		{
			Name:        "Good Omens",
			AuthorList:  "Terry Pratchett, Neil Gaiman",
			Year:        1990,
			Description: "An angel and a demon team up to misplace the Antichrist.",
		},
	}

	books := make([]*entities.Book, 0, len(fixtures))
	for _, fields := range fixtures {
		book, err := store.UpsertBook(fields)
		if err != nil {
			log.Printf("Failed to save book %s: %v", fields.Name, err)
			continue
		}
		log.Printf("Saved: %s by %s (%d)", book.Name, book.AuthorList(), fields.Year)
		books = append(books, book)
	}
	return books
}

func createUsers(db *database.Database, store *catalog.Repository) []*entities.User {
	defaultRole, err := store.DefaultRole()
	if err != nil {
		log.Fatalf("Failed to load default role: %v", err)
	}
	superRole, err := store.SuperRole()
	if err != nil {
		log.Fatalf("Failed to load administrator role: %v", err)
	}

	hash, err := auth.HashPassword(demoPassword, 10)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	fixtures := []struct {
		email    string
		username string
		roleID   uint
	}{
		{"admin@example.com", "admin", superRole.ID},
		{"alice@example.com", "alice", defaultRole.ID},
		{"bob@example.com", "bob", defaultRole.ID},
	}

	now := time.Now()
	users := make([]*entities.User, 0, len(fixtures))
	for _, f := range fixtures {
		user := &entities.User{
			Email:        f.email,
			Username:     f.username,
			PasswordHash: hash,
			RoleID:       f.roleID,
			Confirmed:    true,
			MemberSince:  now,
			LastSeen:     now,
		}
		if err := db.DB.Create(user).Error; err != nil {
			log.Printf("Failed to create user %s: %v", f.username, err)
			continue
		}
		log.Printf("Created user: %s (password: %s)", f.username, demoPassword)
		users = append(users, user)
	}
	return users
}
