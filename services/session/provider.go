package session

import (
	"github.com/tech-arch1tect/postline/services/jwt"
	"github.com/tech-arch1tect/postline/services/logging"
	"github.com/tech-arch1tect/postline/services/metrics"
	"github.com/tech-arch1tect/postline/services/password"
	"github.com/tech-arch1tect/postline/services/refreshtoken"
	"github.com/tech-arch1tect/postline/services/users"
	"go.uber.org/fx"
)

func ProvideSessionService(
	userService *users.Service,
	tokens *refreshtoken.Service,
	jwtService *jwt.Service,
	hasher password.Hasher,
	metricsService *metrics.Service,
	logger *logging.Service,
) *Service {
	return NewService(userService, tokens, jwtService, hasher, metricsService, logger.Named("session"))
}

var Options = fx.Options(
	fx.Provide(ProvideSessionService),
)
