// Package forms validates administrator input before it reaches the catalog.
// Validation failures carry field-level messages; the mutating operation is
// never attempted for invalid input.
package forms

import (
	"errors"
	"regexp"

	"github.com/openshelf/elibrary/internal/catalog"
	"github.com/openshelf/elibrary/internal/entities"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.]*$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Errors maps field names to validation messages.
type Errors map[string]string

// Any reports whether any field failed validation.
func (e Errors) Any() bool {
	return len(e) > 0
}

// BookForm is the admin add/edit book input.
type BookForm struct {
	Name        string
	Description string
	Author      string
	Year        int
	ImgURL      string
}

// Validate checks the field constraints; it performs no store lookups.
func (f *BookForm) Validate() Errors {
	errs := Errors{}
	if f.Name == "" {
		errs["name"] = "Name is required."
	} else if len(f.Name) > 64 {
		errs["name"] = "Name must be at most 64 characters."
	}
	if f.Author == "" {
		errs["author"] = "Author is required."
	} else if len(f.Author) > 64 {
		errs["author"] = "Author must be at most 64 characters."
	}
	if f.Year < 0 || f.Year >= 3000 {
		errs["year"] = "Year must be a valid publication year."
	}
	if len(f.ImgURL) > 255 {
		errs["img_url"] = "Image URL must be at most 255 characters."
	}
	return errs
}

// Fields converts the validated form into the catalog's upsert input.
func (f *BookForm) Fields(id uint) catalog.BookFields {
	return catalog.BookFields{
		ID:          id,
		Name:        f.Name,
		Description: f.Description,
		AuthorList:  f.Author,
		Year:        f.Year,
		ImgURL:      f.ImgURL,
	}
}

// ProfileAdminForm is the administrator's user profile edit input.
type ProfileAdminForm struct {
	Email     string
	Username  string
	Confirmed bool
	RoleID    uint
}

// Validate checks field constraints and uniqueness. Duplicate checks are
// exact-match lookups against the store, skipped when the value is unchanged
// for the user being edited.
func (f *ProfileAdminForm) Validate(current *entities.User, store *catalog.Repository) (Errors, error) {
	errs := Errors{}

	if f.Email == "" {
		errs["email"] = "Email is required."
	} else if len(f.Email) > 64 || !emailPattern.MatchString(f.Email) {
		errs["email"] = "Enter a valid email address."
	} else if f.Email != current.Email {
		_, err := store.GetUserByEmail(f.Email)
		if err == nil {
			errs["email"] = "Email already registered."
		} else if !errors.Is(err, catalog.ErrNotFound) {
			return nil, err
		}
	}

	if f.Username == "" {
		errs["username"] = "Username is required."
	} else if len(f.Username) > 64 || !usernamePattern.MatchString(f.Username) {
		errs["username"] = "Usernames must start with a letter and contain only letters, numbers, dots or underscores."
	} else if f.Username != current.Username {
		_, err := store.GetUser(f.Username)
		if err == nil {
			errs["username"] = "Username already in use."
		} else if !errors.Is(err, catalog.ErrNotFound) {
			return nil, err
		}
	}

	if _, err := store.GetRole(f.RoleID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			errs["role"] = "Select a valid role."
		} else {
			return nil, err
		}
	}

	return errs, nil
}

// Fields converts the validated form into the catalog's profile update.
func (f *ProfileAdminForm) Fields() catalog.ProfileFields {
	return catalog.ProfileFields{
		Email:     f.Email,
		Username:  f.Username,
		Confirmed: f.Confirmed,
		RoleID:    f.RoleID,
	}
}
