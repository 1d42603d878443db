package catalog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/openshelf/elibrary/internal/entities"
)

var defaultRoles = []entities.Role{
	{
		Name:        "User",
		Permissions: entities.PermissionComment | entities.PermissionAddBooks,
		Default:     true,
	},
	{
		Name: "Moderator",
		Permissions: entities.PermissionComment | entities.PermissionAddBooks |
			entities.PermissionModerateComments | entities.PermissionModerateBooks,
	},
	{
		Name:        "Administrator",
		Permissions: entities.PermissionAll,
	},
}

// InsertDefaultRoles seeds the three standard roles. The operation is
// idempotent: existing rows keep their id and get their permission bitmask
// and default flag refreshed, never duplicated.
func (r *Repository) InsertDefaultRoles() error {
	for _, role := range defaultRoles {
		var existing entities.Role
		err := r.db.Where("name = ?", role.Name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := r.db.Create(&role).Error; err != nil {
				return fmt.Errorf("failed to create role %s: %w", role.Name, err)
			}
		case err != nil:
			return fmt.Errorf("failed to look up role %s: %w", role.Name, err)
		default:
			updates := map[string]any{
				"permissions": role.Permissions,
				"is_default":  role.Default,
			}
			if err := r.db.Model(&existing).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to refresh role %s: %w", role.Name, err)
			}
		}
	}
	return nil
}

// ListRoles returns all roles ordered by name, for the admin role selector.
func (r *Repository) ListRoles() ([]entities.Role, error) {
	var roles []entities.Role
	err := r.db.Order("name ASC").Find(&roles).Error
	return roles, err
}

// DefaultRole returns the role assigned to newly registered users.
func (r *Repository) DefaultRole() (*entities.Role, error) {
	var role entities.Role
	err := r.db.Where("is_default = ?", true).First(&role).Error
	if err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

// SuperRole returns the role with the full permission bitmask.
func (r *Repository) SuperRole() (*entities.Role, error) {
	var role entities.Role
	err := r.db.Where("permissions = ?", entities.PermissionAll).First(&role).Error
	if err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

// GetRole retrieves a role by id.
func (r *Repository) GetRole(id uint) (*entities.Role, error) {
	var role entities.Role
	err := r.db.First(&role, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &role, nil
}
