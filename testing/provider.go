package e2etesting

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/tech-arch1tect/postline/app"
	"github.com/tech-arch1tect/postline/config"
	"github.com/tech-arch1tect/postline/services/refreshtoken"
	"github.com/tech-arch1tect/postline/testutils"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// E2EApp runs the full application on a real listener.
type E2EApp struct {
	App             *app.App
	BaseURL         string
	Config          *config.Config
	DB              *gorm.DB
	Tokens          *refreshtoken.Service
	CoverageTracker *CoverageTracker

	readinessTimeout time.Duration
}

type TestConfig struct {
	DatabaseURL      string
	EnableDebugMode  bool
	EnableCoverage   bool
	OverrideConfig   func(*config.Config) *config.Config
	ReadinessTimeout time.Duration
}

type HTTPClient struct {
	Client  *http.Client
	BaseURL string
	token   string
}

func DefaultTestConfig() *TestConfig {
	return &TestConfig{
		DatabaseURL:    ":memory:",
		EnableCoverage: true,
	}
}

func createTestConfig(testConfig *TestConfig) *config.Config {
	cfg := testutils.GetTestConfig()
	cfg.Server.Port = "0"
	cfg.Database.DSN = testConfig.DatabaseURL
	cfg.Log.Level = "error"
	cfg.Log.Format = "json"

	if testConfig.EnableDebugMode {
		cfg.Log.Level = "debug"
	}
	if testConfig.OverrideConfig != nil {
		cfg = testConfig.OverrideConfig(cfg)
	}
	return cfg
}

func BuildTestApp(builder *app.AppBuilder, testConfig *TestConfig) (*E2EApp, error) {
	if testConfig == nil {
		testConfig = DefaultTestConfig()
	}
	cfg := createTestConfig(testConfig)

	var (
		db     *gorm.DB
		tokens *refreshtoken.Service
	)
	builtApp, err := builder.
		WithConfig(cfg).
		WithFxOptions(fx.Populate(&db, &tokens)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build test app: %w", err)
	}

	readinessTimeout := testConfig.ReadinessTimeout
	if readinessTimeout == 0 {
		readinessTimeout = 5 * time.Second
	}

	e2eApp := &E2EApp{
		App:              builtApp,
		Config:           cfg,
		DB:               db,
		Tokens:           tokens,
		readinessTimeout: readinessTimeout,
	}

	if testConfig.EnableCoverage {
		e2eApp.CoverageTracker = NewCoverageTracker("/health", cfg.Metrics.Path, "/docs/*")
		builtApp.Server().Use(e2eApp.CoverageTracker.TrackingMiddleware())
	}

	return e2eApp, nil
}

// Start boots the application and waits until its listener accepts
// connections.
func (e *E2EApp) Start(ctx context.Context) error {
	if err := e.App.Start(); err != nil {
		return fmt.Errorf("failed to start test app: %w", err)
	}

	addr, err := e.waitForListener(ctx)
	if err != nil {
		return fmt.Errorf("server failed to become ready: %w", err)
	}
	e.BaseURL = "http://" + addr

	if e.CoverageTracker != nil {
		e.CoverageTracker.RegisterRoutes(e.App.Server())
	}
	return nil
}

func (e *E2EApp) waitForListener(ctx context.Context) (string, error) {
	server := e.App.Server()
	deadline := time.After(e.readinessTimeout)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if addr := server.ListenerAddr(); addr != nil {
			conn, err := net.DialTimeout("tcp", addr.String(), 100*time.Millisecond)
			if err == nil {
				_ = conn.Close()
				return addr.String(), nil
			}
		}
		select {
		case <-ticker.C:
		case <-deadline:
			return "", fmt.Errorf("timeout after %s waiting for HTTP listener", e.readinessTimeout)
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func (e *E2EApp) Stop() {
	e.App.StopTest()
}

func (e *E2EApp) Client() *HTTPClient {
	return &HTTPClient{
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: e.BaseURL,
	}
}
