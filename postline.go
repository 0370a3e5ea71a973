// Package postline assembles the posts and comments API.
package postline

import (
	"github.com/tech-arch1tect/postline/app"
	"github.com/tech-arch1tect/postline/config"
)

type App = app.App

// New builds the application from cfg, or from the environment when cfg is nil.
func New(cfg *config.Config) (*App, error) {
	builder := app.NewApp()
	if cfg != nil {
		builder = builder.WithConfig(cfg)
	}
	return builder.Build()
}
