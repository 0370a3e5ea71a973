package comments

import (
	"github.com/tech-arch1tect/postline/services/logging"
	"github.com/tech-arch1tect/postline/services/posts"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideCommentService(db *gorm.DB, postService *posts.Service, logger *logging.Service) *Service {
	return NewService(db, postService, logger.Named("comments"))
}

var Options = fx.Options(
	fx.Provide(ProvideCommentService),
)
