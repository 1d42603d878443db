package entities

import (
	"time"
)

// Role is a named permission bundle. Roles are seeded at bootstrap and are
// otherwise stable reference data. Exactly one role carries the Default flag;
// it is assigned to newly registered users.
type Role struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"uniqueIndex;size:64" json:"name"`
	Default     bool       `gorm:"column:is_default;index;default:false" json:"default"`
	Permissions Permission `json:"permissions"`
	CreatedAt   time.Time  `json:"created_at"`
}

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:64" json:"email"`
	Username     string     `gorm:"uniqueIndex;size:64" json:"username"`
	PasswordHash string     `gorm:"size:128" json:"-"`
	RoleID       uint       `gorm:"index" json:"role_id"`
	Role         *Role      `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Confirmed    bool       `gorm:"default:false" json:"confirmed"`
	MemberSince  time.Time  `json:"member_since"`
	LastSeen     time.Time  `json:"last_seen"`

	// Login lockout bookkeeping.
	FailedLoginCount int        `json:"-"`
	LockedUntil      *time.Time `json:"-"`

	// Shelf membership. Query through catalog.ListShelvedBooks rather than
	// preloading this collection on every user fetch.
	Books []Book `gorm:"many2many:user_book_reg;" json:"-"`
}

// Can is the permission gate: true iff the user has a role whose bitmask
// covers every bit of p. A nil user (anonymous caller) can do nothing.
func (u *User) Can(p Permission) bool {
	return u != nil && u.Role != nil && u.Role.Permissions.Has(p)
}

func (u *User) IsAdministrator() bool {
	return u.Can(PermissionAdminister)
}

// Template-facing permission helpers; html/template cannot spell the
// Permission constants.
func (u *User) CanAddBooks() bool      { return u.Can(PermissionAddBooks) }
func (u *User) CanModerateBooks() bool { return u.Can(PermissionModerateBooks) }

type Book struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"index;size:64" json:"name"`
	Description string    `gorm:"size:2048" json:"description"`
	ImgURL      string    `gorm:"size:255" json:"img_url,omitempty"`
	YearID      uint      `gorm:"index" json:"year_id"`
	Year        *Year     `gorm:"foreignKey:YearID" json:"year,omitempty"`
	Authors     []Author  `gorm:"many2many:book_author_reg;" json:"authors,omitempty"`
	Users       []User    `gorm:"many2many:user_book_reg;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuthorList renders the author set the way the admin form accepts it.
func (b *Book) AuthorList() string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return joinAuthors(names)
}

type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:64" json:"name"`
	Books     []Book    `gorm:"many2many:book_author_reg;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Year is a unique publication year. One year has many books; each book
// references exactly one year.
type Year struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Year  int    `gorm:"uniqueIndex" json:"year"`
	Books []Book `gorm:"foreignKey:YearID" json:"-"`
}

func (Role) TableName() string   { return "roles" }
func (User) TableName() string   { return "users" }
func (Book) TableName() string   { return "books" }
func (Author) TableName() string { return "authors" }
func (Year) TableName() string   { return "years" }

func joinAuthors(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
