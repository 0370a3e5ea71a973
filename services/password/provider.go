package password

import (
	"github.com/tech-arch1tect/postline/config"
	"go.uber.org/fx"
)

func ProvideHasher(cfg *config.Config) (Hasher, error) {
	return NewHasher(cfg.Auth)
}

var Module = fx.Options(
	fx.Provide(ProvideHasher),
)
