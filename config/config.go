package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig          `envPrefix:"APP_"`
	Server       ServerConfig       `envPrefix:"SERVER_"`
	Log          LogConfig          `envPrefix:"LOG_"`
	Database     DatabaseConfig     `envPrefix:"DATABASE_"`
	JWT          JWTConfig          `envPrefix:"JWT_"`
	RefreshToken RefreshTokenConfig `envPrefix:"REFRESH_TOKEN_"`
	Auth         AuthConfig         `envPrefix:"AUTH_"`
	OpenAPI      OpenAPIConfig      `envPrefix:"OPENAPI_"`
	Metrics      MetricsConfig      `envPrefix:"METRICS_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"postline"`
	URL  string `env:"URL" envDefault:"http://localhost:3000"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"3000"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"postline.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type JWTConfig struct {
	SecretKey    string        `env:"SECRET_KEY,required"`
	Issuer       string        `env:"ISSUER" envDefault:"postline"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
}

type RefreshTokenConfig struct {
	TokenLength     int           `env:"TOKEN_LENGTH" envDefault:"32"`
	ReplayWindow    time.Duration `env:"REPLAY_WINDOW" envDefault:"720h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
}

type AuthConfig struct {
	Hasher            string `env:"HASHER" envDefault:"argon2id"`
	BcryptCost        int    `env:"BCRYPT_COST" envDefault:"10"`
	Argon2MemoryKiB   uint32 `env:"ARGON2_MEMORY_KIB" envDefault:"65536"`
	Argon2Iterations  uint32 `env:"ARGON2_ITERATIONS" envDefault:"3"`
	Argon2Parallelism uint8  `env:"ARGON2_PARALLELISM" envDefault:"2"`
}

type OpenAPIConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Title   string `env:"TITLE" envDefault:"Posts and Comments API"`
	Version string `env:"VERSION" envDefault:"1.0.0"`
}

type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Path    string `env:"PATH" envDefault:"/metrics"`
}

var weakSecretPatterns = []string{"password", "secret", "test", "example", "changeme"}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	if c, ok := cfg.(*Config); ok {
		return c.Validate()
	}
	return nil
}

func ValidateJWTConfig(cfg JWTConfig) error {
	if len(cfg.SecretKey) < 32 {
		return errors.New("JWT secret key must be at least 32 characters long")
	}

	lower := strings.ToLower(cfg.SecretKey)
	for _, pattern := range weakSecretPatterns {
		if strings.Contains(lower, pattern) {
			return errors.New("JWT secret key contains weak patterns")
		}
	}

	if cfg.AccessExpiry <= 0 {
		return errors.New("JWT access expiry must be positive")
	}

	return nil
}

func ValidateRefreshTokenConfig(cfg RefreshTokenConfig) error {
	if cfg.TokenLength < 16 || cfg.TokenLength > 128 {
		return fmt.Errorf("refresh token length must be between 16 and 128 bytes, got %d", cfg.TokenLength)
	}
	if cfg.ReplayWindow <= 0 {
		return errors.New("refresh token replay window must be positive")
	}
	return nil
}

func (c *Config) Validate() error {
	if err := ValidateJWTConfig(c.JWT); err != nil {
		return err
	}
	if err := ValidateRefreshTokenConfig(c.RefreshToken); err != nil {
		return err
	}
	switch c.Auth.Hasher {
	case "argon2id", "bcrypt":
	default:
		return fmt.Errorf("unsupported password hasher: %s (supported: argon2id, bcrypt)", c.Auth.Hasher)
	}
	return nil
}
