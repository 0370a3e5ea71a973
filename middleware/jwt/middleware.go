package jwt

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/postline/services/logging"
	"github.com/tech-arch1tect/postline/services/metrics"
	"github.com/tech-arch1tect/postline/services/ownership"
	"go.uber.org/zap"
)

const IdentityKey = "_jwt_identity"

// AuthFailedMessage is the only message any guard rejection carries.
const AuthFailedMessage = "Authentication failed"

var ErrUnauthenticated = errors.New("unauthenticated")

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Authenticate resolves an Authorization header value to an identity. Every
// failure is ErrUnauthenticated; the underlying cause is returned wrapped for
// logging only.
func Authenticate(verifier TokenVerifier, header string) (ownership.Identity, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ownership.Identity{}, ErrUnauthenticated
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return ownership.Identity{}, ErrUnauthenticated
	}

	userID, err := verifier.Verify(token)
	if err != nil {
		return ownership.Identity{}, errors.Join(ErrUnauthenticated, err)
	}

	return ownership.Identity{UserID: userID}, nil
}

type Config struct {
	Verifier TokenVerifier
	Metrics  *metrics.Service
	Logger   *logging.Service
}

func RequireJWT(verifier TokenVerifier) echo.MiddlewareFunc {
	return RequireJWTWithConfig(Config{Verifier: verifier})
}

func RequireJWTWithConfig(cfg Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := Authenticate(cfg.Verifier, c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				cfg.Metrics.GuardDenied()
				cfg.Logger.Debug("request rejected by access guard",
					zap.String("path", c.Path()),
					zap.Error(err))
				return echo.NewHTTPError(http.StatusUnauthorized, AuthFailedMessage)
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

func GetIdentity(c echo.Context) (ownership.Identity, bool) {
	identity, ok := c.Get(IdentityKey).(ownership.Identity)
	return identity, ok
}

// GetUserID returns the authenticated user id, or "" for anonymous requests.
func GetUserID(c echo.Context) string {
	identity, _ := GetIdentity(c)
	return identity.UserID
}
