package catalog

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/elibrary/internal/entities"
)

// GetUser retrieves a user by username. The lookup is an exact,
// case-sensitive match.
func (r *Repository) GetUser(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Preload("Role").Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, exact match.
func (r *Repository) GetUserByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Preload("Role").Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.Preload("Role").First(&user, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ProfileFields is the administrator's profile-edit input.
type ProfileFields struct {
	Email     string
	Username  string
	Confirmed bool
	RoleID    uint
}

// UpdateUserProfile applies an administrator profile edit in one transaction.
// The target role must exist.
func (r *Repository) UpdateUserProfile(userID uint, fields ProfileFields) (*entities.User, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var user entities.User
		if err := tx.First(&user, userID).Error; err != nil {
			return translate(err)
		}
		var role entities.Role
		if err := tx.First(&role, fields.RoleID).Error; err != nil {
			return translate(err)
		}
		updates := map[string]any{
			"email":     fields.Email,
			"username":  fields.Username,
			"confirmed": fields.Confirmed,
			"role_id":   fields.RoleID,
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(userID)
}

// TouchLastSeen refreshes the user's last-seen timestamp.
func (r *Repository) TouchLastSeen(userID uint) error {
	return r.db.Model(&entities.User{}).
		Where("id = ?", userID).
		Update("last_seen", time.Now()).Error
}

// CountUsers returns the total number of registered users.
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}
