package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/postline/testutils"
)

func TestService_Counters(t *testing.T) {
	service := NewService()

	service.AuthEvent("login", OutcomeSuccess)
	service.AuthEvent("login", OutcomeSuccess)
	service.AuthEvent("refresh", OutcomeFailure)
	service.ReplayRevocation(3)
	service.GuardDenied()

	assert.Equal(t, 2.0, testutil.ToFloat64(service.authEvents.WithLabelValues("login", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(service.authEvents.WithLabelValues("refresh", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(service.revocations))
	assert.Equal(t, 3.0, testutil.ToFloat64(service.revokedCount))
	assert.Equal(t, 1.0, testutil.ToFloat64(service.guardDenials))
}

func TestService_NilSafe(t *testing.T) {
	var service *Service

	assert.NotPanics(t, func() {
		service.AuthEvent("login", OutcomeSuccess)
		service.ReplayRevocation(1)
		service.GuardDenied()
		assert.Nil(t, service.Registry())
	})
}

func TestService_Handler(t *testing.T) {
	service := NewService()
	service.AuthEvent("logout", OutcomeSuccess)

	rec := httptest.NewRecorder()
	service.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `postline_auth_events_total{event="logout",outcome="success"} 1`)
}

func TestProvideMetrics(t *testing.T) {
	cfg := testutils.GetTestConfig()
	assert.NotNil(t, ProvideMetrics(cfg))

	cfg.Metrics.Enabled = false
	assert.Nil(t, ProvideMetrics(cfg))
}
