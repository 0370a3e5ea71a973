package openapi

import (
	"github.com/tech-arch1tect/postline/config"
	"go.uber.org/fx"
)

func ProvideOpenAPI(cfg *config.Config) *OpenAPI {
	return New(cfg.OpenAPI.Title, cfg.OpenAPI.Version).
		Description(cfg.App.Name + " posts, comments and sessions API")
}

var Options = fx.Options(
	fx.Provide(ProvideOpenAPI),
)
