// Package users persists account records. Emails are stored normalised so the
// unique index enforces case-insensitive uniqueness; usernames are unique as
// given, after trimming.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tech-arch1tect/postline/services/logging"
	"github.com/tech-arch1tect/postline/services/refreshtoken"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrBioTooLong        = errors.New("bio must be at most 500 characters")
)

const maxBioLength = 500

type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{db: db, logger: logger}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type NewUser struct {
	Username       string
	Email          string
	PasswordDigest string
	ProfileImage   string
	Bio            string
}

func (s *Service) Create(ctx context.Context, input NewUser) (*User, error) {
	if len([]rune(input.Bio)) > maxBioLength {
		return nil, ErrBioTooLong
	}

	user := &User{
		ID:             uuid.NewString(),
		Username:       strings.TrimSpace(input.Username),
		Email:          NormalizeEmail(input.Email),
		PasswordDigest: input.PasswordDigest,
		ProfileImage:   input.ProfileImage,
		Bio:            input.Bio,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateOf(ctx, user)
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", zap.String("user_id", user.ID))
	return user, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, "email = ?", NormalizeEmail(email))
}

func (s *Service) FindByID(ctx context.Context, id string) (*User, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}

// Delete removes the user together with every active and consumed refresh
// token, so none of them can be resolved afterwards.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&User{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return refreshtoken.DeleteForUser(tx, id)
	})
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.logger.Error("failed to delete user", zap.String("user_id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

// duplicateOf tells which unique column a rejected insert collided on.
func (s *Service) duplicateOf(ctx context.Context, user *User) error {
	if _, err := s.FindByEmail(ctx, user.Email); err == nil {
		return ErrDuplicateEmail
	}
	return ErrDuplicateUsername
}

func (s *Service) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.findOne(ctx, "username = ?", strings.TrimSpace(username))
}

func (s *Service) findOne(ctx context.Context, query string, arg string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
