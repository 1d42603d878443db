package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/elibrary/internal/entities"
)

func TestRepository_InsertDefaultRoles(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.InsertDefaultRoles())

	roles, err := repo.ListRoles()
	require.NoError(t, err)
	require.Len(t, roles, 3)
	// Ordered by name.
	assert.Equal(t, "Administrator", roles[0].Name)
	assert.Equal(t, "Moderator", roles[1].Name)
	assert.Equal(t, "User", roles[2].Name)
}

func TestRepository_InsertDefaultRoles_Idempotent(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.InsertDefaultRoles())
	before, err := repo.DefaultRole()
	require.NoError(t, err)

	require.NoError(t, repo.InsertDefaultRoles())

	var count int64
	require.NoError(t, db.Model(&entities.Role{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	after, err := repo.DefaultRole()
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
}

func TestRepository_InsertDefaultRoles_RefreshesBitmask(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.InsertDefaultRoles())

	// Simulate a role row left over from an older permission layout.
	require.NoError(t, db.Model(&entities.Role{}).
		Where("name = ?", "Moderator").
		Update("permissions", entities.PermissionComment).Error)

	require.NoError(t, repo.InsertDefaultRoles())

	var moderator entities.Role
	require.NoError(t, db.Where("name = ?", "Moderator").First(&moderator).Error)
	assert.True(t, moderator.Permissions.Has(entities.PermissionModerateBooks))
	assert.True(t, moderator.Permissions.Has(entities.PermissionModerateComments))
}

func TestRepository_DefaultRole(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.InsertDefaultRoles())

	role, err := repo.DefaultRole()
	require.NoError(t, err)
	assert.Equal(t, "User", role.Name)
	assert.True(t, role.Permissions.Has(entities.PermissionComment))
	assert.True(t, role.Permissions.Has(entities.PermissionAddBooks))
	assert.False(t, role.Permissions.Has(entities.PermissionModerateBooks))
}

func TestRepository_SuperRole(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.InsertDefaultRoles())

	role, err := repo.SuperRole()
	require.NoError(t, err)
	assert.Equal(t, "Administrator", role.Name)
	assert.True(t, role.Permissions.Has(entities.PermissionAdminister))
}

func TestRepository_GetRole_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetRole(77)

	assert.ErrorIs(t, err, ErrNotFound)
}
