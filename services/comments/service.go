package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tech-arch1tect/postline/services/logging"
	"github.com/tech-arch1tect/postline/services/ownership"
	"github.com/tech-arch1tect/postline/services/posts"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("comment not found")
	ErrValidation = errors.New("content and author are required")
)

type Service struct {
	db     *gorm.DB
	posts  *posts.Service
	logger *logging.Service
}

func NewService(db *gorm.DB, postService *posts.Service, logger *logging.Service) *Service {
	return &Service{db: db, posts: postService, logger: logger}
}

func (s *Service) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	comments := []Comment{}
	err := s.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Comment, error) {
	var comment Comment
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	return &comment, nil
}

// Create attaches a comment to an existing post; posts.ErrNotFound otherwise.
func (s *Service) Create(ctx context.Context, owner ownership.Identity, postID string, input Input) (*Comment, error) {
	if strings.TrimSpace(input.Content) == "" || strings.TrimSpace(input.Author) == "" {
		return nil, ErrValidation
	}
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:      uuid.NewString(),
		PostID:  postID,
		Content: input.Content,
		Author:  input.Author,
		OwnerID: owner.UserID,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		s.logger.Error("failed to create comment", zap.Error(err))
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.logger.Info("comment created",
		zap.String("comment_id", comment.ID),
		zap.String("post_id", postID),
		zap.String("user_id", owner.UserID))
	return comment, nil
}

func (s *Service) Update(ctx context.Context, caller ownership.Identity, id string, input Input) (*Comment, error) {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownership.Authorize(caller, comment.OwnerID); err != nil {
		s.logger.Warn("comment update forbidden", zap.String("comment_id", id), zap.String("user_id", caller.UserID))
		return nil, err
	}

	if input.Content == "" && input.Author == "" {
		return comment, nil
	}
	if err := s.db.WithContext(ctx).Model(comment).Updates(Comment{Content: input.Content, Author: input.Author}).Error; err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, caller ownership.Identity, id string) error {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := ownership.Authorize(caller, comment.OwnerID); err != nil {
		s.logger.Warn("comment delete forbidden", zap.String("comment_id", id), zap.String("user_id", caller.UserID))
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&Comment{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
