package posts

import (
	"github.com/tech-arch1tect/postline/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvidePostService(db *gorm.DB, logger *logging.Service) *Service {
	return NewService(db, logger.Named("posts"))
}

var Options = fx.Options(
	fx.Provide(ProvidePostService),
)
