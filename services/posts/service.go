// Package posts stores posts. Reads are public; updates and deletes are
// allowed for the owner only.
package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tech-arch1tect/postline/services/logging"
	"github.com/tech-arch1tect/postline/services/ownership"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("post not found")
	ErrValidation = errors.New("title and senderID are required")
)

type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{db: db, logger: logger}
}

// List returns all posts, or only those of senderID when it is non-empty.
func (s *Service) List(ctx context.Context, senderID string) ([]Post, error) {
	query := s.db.WithContext(ctx).Order("created_at ASC")
	if senderID != "" {
		query = query.Where("sender_id = ?", senderID)
	}

	posts := []Post{}
	if err := query.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Post, error) {
	var post Post
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	return &post, nil
}

// Create stamps the post with the caller as its permanent owner.
func (s *Service) Create(ctx context.Context, owner ownership.Identity, input Input) (*Post, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.SenderID) == "" {
		return nil, ErrValidation
	}

	post := &Post{
		ID:       uuid.NewString(),
		Title:    input.Title,
		SenderID: input.SenderID,
		OwnerID:  owner.UserID,
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		s.logger.Error("failed to create post", zap.Error(err))
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.logger.Info("post created", zap.String("post_id", post.ID), zap.String("user_id", owner.UserID))
	return post, nil
}

// Update applies the non-empty fields of input. The owner never changes.
func (s *Service) Update(ctx context.Context, caller ownership.Identity, id string, input Input) (*Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownership.Authorize(caller, post.OwnerID); err != nil {
		s.logger.Warn("post update forbidden", zap.String("post_id", id), zap.String("user_id", caller.UserID))
		return nil, err
	}

	if input.Title == "" && input.SenderID == "" {
		return post, nil
	}
	if err := s.db.WithContext(ctx).Model(post).Updates(Post{Title: input.Title, SenderID: input.SenderID}).Error; err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, caller ownership.Identity, id string) (*Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownership.Authorize(caller, post.OwnerID); err != nil {
		s.logger.Warn("post delete forbidden", zap.String("post_id", id), zap.String("user_id", caller.UserID))
		return nil, err
	}

	if err := s.db.WithContext(ctx).Delete(&Post{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to delete post: %w", err)
	}

	s.logger.Info("post deleted", zap.String("post_id", id), zap.String("user_id", caller.UserID))
	return post, nil
}
