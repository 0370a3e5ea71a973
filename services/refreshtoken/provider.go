package refreshtoken

import (
	"context"

	"github.com/tech-arch1tect/postline/config"
	"github.com/tech-arch1tect/postline/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideRefreshTokenService(lc fx.Lifecycle, db *gorm.DB, cfg *config.Config, logger *logging.Service) *Service {
	service := NewService(db, cfg, logger.Named("refreshtoken"))

	if cfg.RefreshToken.CleanupInterval > 0 {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				service.StartCleanupWorker()
				return nil
			},
			OnStop: func(context.Context) error {
				service.StopCleanupWorker()
				return nil
			},
		})
	}

	return service
}

var Options = fx.Options(
	fx.Provide(ProvideRefreshTokenService),
)
