package app

import (
	"errors"
	"fmt"

	"github.com/tech-arch1tect/postline/config"
	"github.com/tech-arch1tect/postline/database"
	"github.com/tech-arch1tect/postline/handlers"
	"github.com/tech-arch1tect/postline/openapi"
	"github.com/tech-arch1tect/postline/server"
	"github.com/tech-arch1tect/postline/services/comments"
	"github.com/tech-arch1tect/postline/services/jwt"
	"github.com/tech-arch1tect/postline/services/logging"
	"github.com/tech-arch1tect/postline/services/metrics"
	"github.com/tech-arch1tect/postline/services/password"
	"github.com/tech-arch1tect/postline/services/posts"
	"github.com/tech-arch1tect/postline/services/refreshtoken"
	"github.com/tech-arch1tect/postline/services/session"
	"github.com/tech-arch1tect/postline/services/users"
	"go.uber.org/fx"
)

// Models lists every table the API owns.
func Models() []any {
	return []any{
		&users.User{},
		&refreshtoken.RefreshToken{},
		&refreshtoken.ConsumedRefreshToken{},
		&posts.Post{},
		&comments.Comment{},
	}
}

type AppBuilder struct {
	config    *config.Config
	models    []any
	fxOptions []fx.Option
	errors    []error
}

func NewApp() *AppBuilder {
	return &AppBuilder{
		models:    make([]any, 0),
		fxOptions: make([]fx.Option, 0),
		errors:    make([]error, 0),
	}
}

func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	if cfg == nil {
		b.errors = append(b.errors, errors.New("config cannot be nil"))
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithAutoConfig() *AppBuilder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.errors = append(b.errors, fmt.Errorf("failed to load config: %w", err))
		return b
	}
	b.config = cfg
	return b
}

// WithModels migrates extra tables next to the API's own.
func (b *AppBuilder) WithModels(models ...any) *AppBuilder {
	b.models = append(b.models, models...)
	return b
}

func (b *AppBuilder) WithFxOptions(opts ...fx.Option) *AppBuilder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	if b.config == nil && len(b.errors) == 0 {
		b.WithAutoConfig()
	}
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("configuration errors: %w", errors.Join(b.errors...))
	}
	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &App{config: b.config}

	options := []fx.Option{fx.NopLogger}
	options = append(options, b.modules()...)
	options = append(options, b.fxOptions...)
	options = append(options, fx.Populate(&app.logger, &app.db, &app.server, &app.sessions))

	app.fx = fx.New(options...)
	if err := app.fx.Err(); err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}
	return app, nil
}

func (b *AppBuilder) modules() []fx.Option {
	models := append(Models(), b.models...)

	return []fx.Option{
		config.NewProvider(b.config),
		logging.Module,
		fx.Supply(database.WithModels(models...)),
		database.Module,
		password.Module,
		jwt.Options,
		users.Options,
		refreshtoken.Options,
		metrics.Options,
		session.Options,
		posts.Options,
		comments.Options,
		openapi.Options,
		server.NewProvider(),
		handlers.Options,
	}
}
