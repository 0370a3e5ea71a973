package metrics

import (
	"github.com/tech-arch1tect/postline/config"
	"go.uber.org/fx"
)

// ProvideMetrics returns nil when metrics are disabled; every recorder method
// tolerates that.
func ProvideMetrics(cfg *config.Config) *Service {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return NewService()
}

var Options = fx.Options(
	fx.Provide(ProvideMetrics),
)
