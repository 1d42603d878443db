package auth

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/elibrary/internal/catalog"
	"github.com/openshelf/elibrary/internal/config"
	"github.com/openshelf/elibrary/internal/entities"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrUsernameTaken    = errors.New("username already in use")
	ErrEmailRequired    = errors.New("email is required")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
)

// Service handles registration and credential verification.
type Service struct {
	db         *gorm.DB
	store      *catalog.Repository
	config     config.Auth
	adminEmail string
}

func NewService(db *gorm.DB, store *catalog.Repository, cfg config.Auth, adminEmail string) *Service {
	return &Service{db: db, store: store, config: cfg, adminEmail: adminEmail}
}

// Register creates a user with the default role, or the administrator role
// when the email matches the configured admin address.
func (s *Service) Register(email, username, password string) (*entities.User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	if _, err := s.store.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, catalog.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := s.store.GetUser(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, catalog.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	role, err := s.roleFor(email)
	if err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entities.User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		RoleID:       role.ID,
		MemberSince:  now,
		LastSeen:     now,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.Role = role
	return user, nil
}

func (s *Service) roleFor(email string) (*entities.Role, error) {
	if s.adminEmail != "" && email == s.adminEmail {
		role, err := s.store.SuperRole()
		if err == nil {
			return role, nil
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			return nil, err
		}
	}
	role, err := s.store.DefaultRole()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default role: %w", err)
	}
	return role, nil
}

// Authenticate validates credentials by username or email and returns the
// user with their role loaded. Repeated failures lock the account.
func (s *Service) Authenticate(login, password string) (*entities.User, error) {
	var user entities.User
	err := s.db.Preload("Role").
		Where("username = ? OR email = ?", login, login).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.LockedUntil != nil && time.Now().Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(&user)
		return nil, err
	}

	now := time.Now()
	s.db.Model(&user).Updates(map[string]any{
		"last_seen":          now,
		"failed_login_count": 0,
		"locked_until":       nil,
	})

	return &user, nil
}

// recordFailedLogin increments the failed login counter and locks the account
// if the threshold is reached.
func (s *Service) recordFailedLogin(user *entities.User) {
	user.FailedLoginCount++

	updates := map[string]any{
		"failed_login_count": user.FailedLoginCount,
	}

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if user.FailedLoginCount >= maxAttempts {
		lockoutDuration := s.config.LockoutDuration
		if lockoutDuration == 0 {
			lockoutDuration = 30 * time.Minute
		}
		updates["locked_until"] = time.Now().Add(lockoutDuration)
	}

	s.db.Model(user).Updates(updates)
}
