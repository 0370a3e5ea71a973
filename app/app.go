package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/postline/config"
	"github.com/tech-arch1tect/postline/server"
	"github.com/tech-arch1tect/postline/services/logging"
	"github.com/tech-arch1tect/postline/services/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	shutdownTimeout     = 30 * time.Second
	testShutdownTimeout = 2 * time.Second
)

type App struct {
	fx       *fx.App
	config   *config.Config
	logger   *logging.Service
	db       *gorm.DB
	server   *server.Server
	sessions *session.Service
}

func (a *App) Start() error {
	return a.fx.Start(context.Background())
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() {
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info("received shutdown signal, stopping gracefully", zap.String("signal", sig.String()))

	a.stop(shutdownTimeout)
}

func (a *App) Stop() {
	a.stop(shutdownTimeout)
}

func (a *App) StopTest() {
	a.stop(testShutdownTimeout)
}

func (a *App) stop(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		if a.logger != nil {
			a.logger.Error("failed to stop application gracefully", zap.Error(err))
		} else {
			log.Printf("Failed to stop application gracefully: %v", err)
		}
	}
}

func (a *App) Err() error {
	return a.fx.Err()
}

func (a *App) Server() *echo.Echo {
	if a.server == nil {
		return nil
	}
	return a.server.Echo()
}

func (a *App) HTTPServer() *server.Server {
	return a.server
}

func (a *App) DB() *gorm.DB {
	return a.db
}

func (a *App) Logger() *logging.Service {
	return a.logger
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Sessions() *session.Service {
	return a.sessions
}
