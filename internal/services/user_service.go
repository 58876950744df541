package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/circuitgen-be/internal/auth"
	"github.com/isdelr/circuitgen-be/internal/models"
	"gorm.io/gorm"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	CreateUser(ctx context.Context, email, password string) (models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UserService provides business logic for user management.
type UserService struct {
	db     *gorm.DB
	hasher *auth.PasswordHasher
	now    func() time.Time

	// dummyHash is verified against when the email is unknown so that both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewUserService creates a new UserService. It fails when the hasher
// cannot produce the timing reference hash, e.g. for an invalid cost.
func NewUserService(db *gorm.DB, hasher *auth.PasswordHasher) (*UserService, error) {
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare user service: %w", err)
	}
	return &UserService{db: db, hasher: hasher, now: time.Now, dummyHash: dummy}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return models.User{}, classify("get user", err, fmt.Errorf("user %d: %w", id, ErrNotFound))
	}
	return user, nil
}

// CreateUser registers a new user, hashing their password. A second
// registration with the same email fails with ErrConflict.
func (s *UserService) CreateUser(ctx context.Context, email, password string) (models.User, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Email:          normalizeEmail(email),
		HashedPassword: hashed,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return models.User{}, classify("create user", err, ErrStorage)
	}

	user.HashedPassword = ""
	return user, nil
}

// AuthenticateUser verifies a user's credentials. Unknown email and wrong
// password both yield ErrInvalidCredentials.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, storageError("find user", err)
		}
		s.hasher.Verify(password, s.dummyHash)
		return models.User{}, fmt.Errorf("authentication failed: %w", ErrInvalidCredentials)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return models.User{}, fmt.Errorf("authentication failed: %w", ErrInvalidCredentials)
	}

	user.HashedPassword = ""
	return user, nil
}

// DeleteUser removes a user. Their circuits are detached (owner becomes
// anonymous) in the same transaction so share links keep resolving.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Circuit{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return storageError("detach circuits", err)
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return storageError("delete user", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
