package auth

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openshelf/elibrary/internal/catalog"
	"github.com/openshelf/elibrary/internal/config"
	"github.com/openshelf/elibrary/internal/entities"
)

func setupService(t *testing.T, adminEmail string) (*Service, func()) {
	dbPath := "./test_auth_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Role{}, &entities.User{})
	require.NoError(t, err)

	store := catalog.NewRepository(db, catalog.Config{})
	require.NoError(t, store.InsertDefaultRoles())

	cfg := config.Auth{
		BcryptCost:       bcrypt.MinCost,
		MaxLoginAttempts: 3,
		LockoutDuration:  time.Minute,
	}
	service := NewService(db, store, cfg, adminEmail)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return service, cleanup
}

func TestService_Register(t *testing.T) {
	service, cleanup := setupService(t, "")
	defer cleanup()

	user, err := service.Register("alice@example.com", "alice", "password123")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	require.NotNil(t, user.Role)
	assert.Equal(t, "User", user.Role.Name)
	assert.True(t, user.Can(entities.PermissionAddBooks))
	assert.False(t, user.Can(entities.PermissionModerateBooks))
}

func TestService_Register_AdminEmailGetsSuperRole(t *testing.T) {
	service, cleanup := setupService(t, "root@library.org")
	defer cleanup()

	admin, err := service.Register("root@library.org", "root", "password123")
	require.NoError(t, err)
	require.NotNil(t, admin.Role)
	assert.Equal(t, "Administrator", admin.Role.Name)
	assert.True(t, admin.IsAdministrator())

	// Everyone else still gets the default role.
	user, err := service.Register("bob@example.com", "bob", "password123")
	require.NoError(t, err)
	assert.Equal(t, "User", user.Role.Name)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	service, cleanup := setupService(t, "")
	defer cleanup()

	_, err := service.Register("alice@example.com", "alice", "password123")
	require.NoError(t, err)

	_, err = service.Register("alice@example.com", "alice2", "password123")

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	service, cleanup := setupService(t, "")
	defer cleanup()

	_, err := service.Register("alice@example.com", "alice", "password123")
	require.NoError(t, err)

	_, err = service.Register("alice2@example.com", "alice", "password123")

	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestService_Register_MissingFields(t *testing.T) {
	service, cleanup := setupService(t, "")
	defer cleanup()

	_, err := service.Register("", "alice", "password123")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = service.Register("alice@example.com", "", "password123")
	assert.ErrorIs(t, err, ErrUsernameRequired)

	_, err = service.Register("alice@example.com", "alice", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)
}

func TestService_Register_ShortPassword(t *testing.T) {
	service, cleanup := setupService(t, "")
	defer cleanup()

	_, err := service.Register("alice@example.com", "alice", "short")

	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestService_Authenticate_ByUsernameAndEmail(t *testing.T) {
	service, cleanup := setupService(t, "")
	defer cleanup()

	created, err := service.Register("alice@example.com", "alice", "password123")
	require.NoError(t, err)

	byUsername, err := service.Authenticate("alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)
	require.NotNil(t, byUsername.Role)

	byEmail, err := service.Authenticate("alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestService_Authenticate_WrongPassword(t *testing.T) {
	service, cleanup := setupService(t, "")
	defer cleanup()

	_, err := service.Register("alice@example.com", "alice", "password123")
	require.NoError(t, err)

	_, err = service.Authenticate("alice", "not-the-password")

	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestService_Authenticate_UnknownUser(t *testing.T) {
	service, cleanup := setupService(t, "")
	defer cleanup()

	_, err := service.Authenticate("nobody", "password123")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_Authenticate_LockoutAfterRepeatedFailures(t *testing.T) {
	service, cleanup := setupService(t, "")
	defer cleanup()

	_, err := service.Register("alice@example.com", "alice", "password123")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = service.Authenticate("alice", "wrong")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	}

	// Even the correct password is rejected while locked.
	_, err = service.Authenticate("alice", "password123")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestService_Authenticate_SuccessResetsFailureCount(t *testing.T) {
	service, cleanup := setupService(t, "")
	defer cleanup()

	_, err := service.Register("alice@example.com", "alice", "password123")
	require.NoError(t, err)

	_, err = service.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	user, err := service.Authenticate("alice", "password123")
	require.NoError(t, err)
	assert.Zero(t, user.FailedLoginCount)

	refreshed, err := service.Authenticate("alice", "password123")
	require.NoError(t, err)
	assert.Zero(t, refreshed.FailedLoginCount)
}
