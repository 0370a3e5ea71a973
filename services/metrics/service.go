// Package metrics exposes authentication counters in the Prometheus text
// format. A nil *Service records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "postline"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Service struct {
	registry     *prometheus.Registry
	authEvents   *prometheus.CounterVec
	revocations  prometheus.Counter
	revokedCount prometheus.Counter
	guardDenials prometheus.Counter
}

func NewService() *Service {
	registry := prometheus.NewRegistry()

	s := &Service{
		registry: registry,
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Session operations by kind and outcome.",
		}, []string{"event", "outcome"}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "replay_revocations_total",
			Help:      "Session sets revoked after a consumed refresh token was presented.",
		}),
		revokedCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "revoked_refresh_tokens_total",
			Help:      "Refresh tokens removed by replay revocation.",
		}),
		guardDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "unauthenticated_requests_total",
			Help:      "Requests rejected by the access guard.",
		}),
	}

	registry.MustRegister(
		s.authEvents,
		s.revocations,
		s.revokedCount,
		s.guardDenials,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return s
}

func (s *Service) AuthEvent(event, outcome string) {
	if s == nil {
		return
	}
	s.authEvents.WithLabelValues(event, outcome).Inc()
}

func (s *Service) ReplayRevocation(tokens int64) {
	if s == nil {
		return
	}
	s.revocations.Inc()
	s.revokedCount.Add(float64(tokens))
}

func (s *Service) GuardDenied() {
	if s == nil {
		return
	}
	s.guardDenials.Inc()
}

func (s *Service) Registry() *prometheus.Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}
