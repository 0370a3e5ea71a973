// Package jwtshared loads the account behind an authenticated request. It runs
// after the access guard.
package jwtshared

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/postline/middleware/jwt"
	"github.com/tech-arch1tect/postline/services/users"
)

const currentUserKey = "currentUser"

type UserProvider interface {
	FindByID(ctx context.Context, id string) (*users.User, error)
}

// RequireUser rejects requests whose access token is still valid but whose
// account no longer exists.
func RequireUser(provider UserProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := jwt.GetUserID(c)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, jwt.AuthFailedMessage)
			}

			user, err := provider.FindByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, users.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, jwt.AuthFailedMessage)
				}
				return err
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

func GetCurrentUser(c echo.Context) *users.User {
	user, _ := c.Get(currentUserKey).(*users.User)
	return user
}
