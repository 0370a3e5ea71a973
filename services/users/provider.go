package users

import (
	"github.com/tech-arch1tect/postline/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideUserService(db *gorm.DB, logger *logging.Service) *Service {
	return NewService(db, logger.Named("users"))
}

var Options = fx.Options(
	fx.Provide(ProvideUserService),
)
