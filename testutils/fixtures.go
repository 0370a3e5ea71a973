package testutils

import (
	"time"

	"github.com/tech-arch1tect/postline/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "Test App",
			URL:  "http://localhost:3000",
		},
		Server: config.ServerConfig{
			Host: "localhost",
			Port: "3000",
		},
		Log: config.LogConfig{
			Level:  "debug",
			Format: "console",
			Output: "stdout",
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		JWT: config.JWTConfig{
			SecretKey:    "k9Zq2Lm7Rt4Vx8Bn3Hc6Jw1Pf5Gd0Ys2Ua7Ee",
			Issuer:       "postline-tests",
			AccessExpiry: 5 * time.Second,
		},
		RefreshToken: config.RefreshTokenConfig{
			TokenLength:     32,
			ReplayWindow:    24 * time.Hour,
			CleanupInterval: 0,
		},
		Auth: config.AuthConfig{
			Hasher:            "bcrypt",
			BcryptCost:        bcrypt.MinCost,
			Argon2MemoryKiB:   8 * 1024,
			Argon2Iterations:  1,
			Argon2Parallelism: 1,
		},
		OpenAPI: config.OpenAPIConfig{
			Enabled: true,
			Title:   "Test API",
			Version: "test",
		},
		Metrics: config.MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

var TestUsers = struct {
	Alice struct{ Username, Email, Password string }
	Bob   struct{ Username, Email, Password string }
}{
	Alice: struct{ Username, Email, Password string }{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "testPasswordAuth123",
	},
	Bob: struct{ Username, Email, Password string }{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "anotherPassword123",
	},
}
