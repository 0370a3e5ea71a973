package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/postline/services/jwt"
	"github.com/tech-arch1tect/postline/services/metrics"
	"github.com/tech-arch1tect/postline/testutils"
)

func setupTestJWTService(clock *testutils.Clock) *jwt.Service {
	service := jwt.NewService(testutils.GetTestConfig(), nil)
	service.SetClock(clock.Now)
	return service
}

func TestAuthenticate(t *testing.T) {
	clock := testutils.NewClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	service := setupTestJWTService(clock)

	token, err := service.GenerateToken("user-42")
	require.NoError(t, err)

	t.Run("valid bearer token", func(t *testing.T) {
		identity, err := Authenticate(service, "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, "user-42", identity.UserID)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		identity, err := Authenticate(service, "bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, "user-42", identity.UserID)
	})

	for name, header := range map[string]string{
		"missing header":  "",
		"no scheme":       token,
		"wrong scheme":    "Basic " + token,
		"empty token":     "Bearer ",
		"malformed token": "Bearer not.a.jwt",
		"tampered token":  "Bearer " + token + "x",
	} {
		t.Run(name, func(t *testing.T) {
			identity, err := Authenticate(service, header)
			assert.ErrorIs(t, err, ErrUnauthenticated)
			assert.Empty(t, identity.UserID)
		})
	}

	t.Run("expired token", func(t *testing.T) {
		later := setupTestJWTService(testutils.NewClock(clock.Now().Add(10 * time.Second)))

		_, err := Authenticate(later, "Bearer "+token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})
}

func TestRequireJWT(t *testing.T) {
	e := echo.New()
	clock := testutils.NewClock(time.Now())
	jwtService := setupTestJWTService(clock)
	metricsService := metrics.NewService()
	middleware := RequireJWTWithConfig(Config{Verifier: jwtService, Metrics: metricsService})

	successHandler := func(c echo.Context) error {
		identity, ok := GetIdentity(c)
		require.True(t, ok)
		return c.String(http.StatusOK, identity.UserID)
	}

	t.Run("valid token sets identity", func(t *testing.T) {
		token, err := jwtService.GenerateToken("user-7")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, middleware(successHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-7", rec.Body.String())
		assert.Equal(t, "user-7", GetUserID(c))
	})

	t.Run("every failure has the same message", func(t *testing.T) {
		for _, header := range []string{"", "Token abc", "Bearer ", "Bearer invalid.jwt.token"} {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if header != "" {
				req.Header.Set(echo.HeaderAuthorization, header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			err := middleware(successHandler)(c)

			httpError, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, http.StatusUnauthorized, httpError.Code)
			assert.Equal(t, AuthFailedMessage, httpError.Message)
			assert.Empty(t, GetUserID(c))
		}
	})
}

func TestGetIdentity_Anonymous(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := GetIdentity(c)
	assert.False(t, ok)
	assert.Empty(t, GetUserID(c))
}
