package e2etesting

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type TokenPair struct {
	ID           string `json:"id,omitempty"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthHelper struct {
	HTTPClient *HTTPClient
}

func NewAuthHelper(httpClient *HTTPClient) *AuthHelper {
	return &AuthHelper{HTTPClient: httpClient}
}

func (h *AuthHelper) Register(username, email, password string) (*Response, error) {
	return h.HTTPClient.Post("/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

func (h *AuthHelper) Login(email, password string) (*Response, error) {
	return h.HTTPClient.Post("/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (h *AuthHelper) Refresh(refreshToken string) (*Response, error) {
	return h.HTTPClient.Post("/auth/refresh-token", map[string]string{"refreshToken": refreshToken})
}

func (h *AuthHelper) Logout(refreshToken string) (*Response, error) {
	return h.HTTPClient.Post("/auth/logout", map[string]string{"refreshToken": refreshToken})
}

// MustRegister registers a user and returns its first token pair.
func (h *AuthHelper) MustRegister(t *testing.T, username, email, password string) TokenPair {
	t.Helper()
	resp, err := h.Register(username, email, password)
	require.NoError(t, err)
	return decodePair(t, resp, http.StatusCreated)
}

func (h *AuthHelper) MustLogin(t *testing.T, email, password string) TokenPair {
	t.Helper()
	resp, err := h.Login(email, password)
	require.NoError(t, err)
	return decodePair(t, resp, http.StatusOK)
}

func (h *AuthHelper) MustRefresh(t *testing.T, refreshToken string) TokenPair {
	t.Helper()
	resp, err := h.Refresh(refreshToken)
	require.NoError(t, err)
	return decodePair(t, resp, http.StatusOK)
}

func decodePair(t *testing.T, resp *Response, status int) TokenPair {
	t.Helper()
	resp.AssertStatus(t, status)

	var pair TokenPair
	require.NoError(t, resp.GetJSON(&pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}
