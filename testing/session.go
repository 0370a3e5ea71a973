package e2etesting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/postline/services/refreshtoken"
)

// SessionHelper inspects the server side of refresh-token sessions.
type SessionHelper struct {
	Tokens *refreshtoken.Service
}

func NewSessionHelper(tokens *refreshtoken.Service) *SessionHelper {
	return &SessionHelper{Tokens: tokens}
}

func (h *SessionHelper) AssertSessionCount(t *testing.T, userID string, expectedCount int64) {
	t.Helper()
	count, err := h.Tokens.ActiveCount(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, expectedCount, count, "unexpected number of active sessions for %s", userID)
}

func (h *SessionHelper) AssertNoSessions(t *testing.T, userID string) {
	t.Helper()
	h.AssertSessionCount(t, userID, 0)
}

func (h *SessionHelper) Sessions(t *testing.T, userID string) []refreshtoken.RefreshToken {
	t.Helper()
	sessions, err := h.Tokens.ListActive(context.Background(), userID)
	require.NoError(t, err)
	return sessions
}
