package logging

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewService(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		service, err := NewService(Config{Level: Info, Format: "json", OutputPath: "stdout"})

		require.NoError(t, err)
		assert.NotNil(t, service.Logger())
	})

	t.Run("console format", func(t *testing.T) {
		service, err := NewService(Config{Level: Debug, Format: "console", OutputPath: "stdout"})

		require.NoError(t, err)
		assert.NotNil(t, service.Logger())
	})

	t.Run("unsupported format", func(t *testing.T) {
		service, err := NewService(Config{Level: Debug, Format: "xml"})

		require.Error(t, err)
		assert.Nil(t, service)
	})

	t.Run("file output", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "test.log")

		service, err := NewService(Config{Level: Warn, Format: "json", OutputPath: logFile})
		require.NoError(t, err)

		service.Warn("written")
		_ = service.Sync()

		_, err = os.Stat(logFile)
		assert.NoError(t, err)
	})
}

func TestService_NilSafe(t *testing.T) {
	var service *Service

	assert.NotPanics(t, func() {
		service.Debug("debug")
		service.Info("info")
		service.Warn("warn")
		service.Error("error")
		assert.Nil(t, service.Named("x"))
		assert.Nil(t, service.With(zap.String("k", "v")))
		assert.NoError(t, service.Sync())
		assert.Nil(t, service.Logger())
	})
}

func TestService_NamedAndWith(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	service := NewFromZap(zap.New(core))

	service.Named("session").With(zap.String("user_id", "u1")).Info("login succeeded")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "session", entry.LoggerName)
	assert.Equal(t, "u1", entry.ContextMap()["user_id"])
}

func TestTokenHash(t *testing.T) {
	field := TokenHash("0123456789abcdef0123")
	assert.Equal(t, "0123456789ab...", field.String)

	short := TokenHash("abc")
	assert.Equal(t, "abc", short.String)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel(Debug))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel(Warn))
	assert.Equal(t, zapcore.ErrorLevel, parseLogLevel(Error))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("bogus"))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	service := NewFromZap(zap.New(core))

	e := echo.New()
	userID := func(c echo.Context) string {
		if id, ok := c.Get("uid").(string); ok {
			return id
		}
		return ""
	}
	e.Use(RequestLogger(service, userID, "/health"))
	e.GET("/ok", func(c echo.Context) error {
		c.Set("uid", "user-1")
		return c.NoContent(http.StatusOK)
	})
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusForbidden, "nope")
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("boom")
	})
	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for _, path := range []string{"/ok", "/fail", "/boom", "/health"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "request", entries[0].Message)
	assert.Equal(t, "user-1", entries[0].ContextMap()["user_id"])

	assert.Equal(t, "client error", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	_, hasUser := entries[1].ContextMap()["user_id"]
	assert.False(t, hasUser)

	assert.Equal(t, "server error", entries[2].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}
