package e2etesting

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/postline/app"
	"github.com/tech-arch1tect/postline/config"
	"github.com/tech-arch1tect/postline/testutils"
)

func startApp(t *testing.T) *E2EApp {
	t.Helper()
	testConfig := DefaultTestConfig()
	testConfig.OverrideConfig = func(cfg *config.Config) *config.Config {
		cfg.JWT.AccessExpiry = time.Minute
		return cfg
	}

	e2eApp, err := BuildTestApp(app.NewApp(), testConfig)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e2eApp.Start(ctx))
	t.Cleanup(e2eApp.Stop)

	return e2eApp
}

func TestE2E_API(t *testing.T) {
	e2eApp := startApp(t)
	client := e2eApp.Client()
	auth := NewAuthHelper(client)
	sessions := NewSessionHelper(e2eApp.Tokens)

	alice := testutils.TestUsers.Alice
	bob := testutils.TestUsers.Bob

	laptop := auth.MustRegister(t, alice.Username, alice.Email, alice.Password)
	phone := auth.MustLogin(t, alice.Email, alice.Password)
	bobPair := auth.MustRegister(t, bob.Username, bob.Email, bob.Password)
	require.NotEmpty(t, laptop.ID)
	sessions.AssertSessionCount(t, laptop.ID, 2)

	t.Run("profile", func(t *testing.T) {
		resp, err := client.WithToken(laptop.AccessToken).Get("/auth/me")
		require.NoError(t, err)
		resp.AssertStatus(t, http.StatusOK)
		assert.Contains(t, resp.GetString(), alice.Email)
	})

	t.Run("posts and comments", func(t *testing.T) {
		aliceClient := client.WithToken(laptop.AccessToken)
		bobClient := client.WithToken(bobPair.AccessToken)

		resp, err := aliceClient.Post("/post", map[string]string{"title": "first", "senderID": "alice"})
		require.NoError(t, err)
		resp.AssertStatus(t, http.StatusCreated)
		var post struct {
			ID    string `json:"id"`
			Owner string `json:"owner"`
		}
		require.NoError(t, resp.GetJSON(&post))
		assert.Equal(t, laptop.ID, post.Owner)

		resp, err = client.Get("/post")
		require.NoError(t, err)
		resp.AssertStatus(t, http.StatusOK)

		resp, err = client.Get("/post/" + post.ID)
		require.NoError(t, err)
		resp.AssertStatus(t, http.StatusOK)

		resp, err = bobClient.Put("/post/"+post.ID, map[string]string{"title": "taken"})
		require.NoError(t, err)
		resp.AssertError(t, http.StatusForbidden, "Forbidden - You can only update your own posts")

		resp, err = aliceClient.Put("/post/"+post.ID, map[string]string{"title": "edited"})
		require.NoError(t, err)
		resp.AssertStatus(t, http.StatusOK)

		resp, err = bobClient.Post("/comment/post/"+post.ID, map[string]string{"content": "nice", "author": "bob"})
		require.NoError(t, err)
		resp.AssertStatus(t, http.StatusCreated)
		var comment struct {
			ID string `json:"id"`
		}
		require.NoError(t, resp.GetJSON(&comment))

		resp, err = client.Get("/comment/post/" + post.ID)
		require.NoError(t, err)
		resp.AssertStatus(t, http.StatusOK)

		resp, err = client.Get("/comment/" + comment.ID)
		require.NoError(t, err)
		resp.AssertStatus(t, http.StatusOK)

		resp, err = aliceClient.Delete("/comment/" + comment.ID)
		require.NoError(t, err)
		resp.AssertError(t, http.StatusForbidden, "Forbidden - You can only delete your own comments")

		resp, err = bobClient.Put("/comment/"+comment.ID, map[string]string{"content": "very nice"})
		require.NoError(t, err)
		resp.AssertStatus(t, http.StatusOK)

		resp, err = bobClient.Delete("/comment/" + comment.ID)
		require.NoError(t, err)
		resp.AssertStatus(t, http.StatusOK)

		resp, err = aliceClient.Delete("/post/" + post.ID)
		require.NoError(t, err)
		resp.AssertStatus(t, http.StatusOK)
	})

	t.Run("replayed refresh token revokes every session", func(t *testing.T) {
		rotated := auth.MustRefresh(t, laptop.RefreshToken)
		sessions.AssertSessionCount(t, laptop.ID, 2)

		resp, err := auth.Refresh(laptop.RefreshToken)
		require.NoError(t, err)
		resp.AssertError(t, http.StatusUnauthorized, "Invalid refresh token")
		sessions.AssertNoSessions(t, laptop.ID)

		for _, token := range []string{rotated.RefreshToken, phone.RefreshToken} {
			resp, err = auth.Refresh(token)
			require.NoError(t, err)
			resp.AssertError(t, http.StatusUnauthorized, "Invalid refresh token")
		}

		sessions.AssertSessionCount(t, bobPair.ID, 1)
	})

	t.Run("logout and account deletion", func(t *testing.T) {
		fresh := auth.MustLogin(t, bob.Email, bob.Password)

		resp, err := auth.Logout(fresh.RefreshToken)
		require.NoError(t, err)
		resp.AssertStatus(t, http.StatusOK)
		sessions.AssertSessionCount(t, bobPair.ID, 1)

		resp, err = client.WithToken(bobPair.AccessToken).Delete("/auth/account")
		require.NoError(t, err)
		resp.AssertStatus(t, http.StatusOK)
		sessions.AssertNoSessions(t, bobPair.ID)

		resp, err = auth.Login(bob.Email, bob.Password)
		require.NoError(t, err)
		resp.AssertError(t, http.StatusBadRequest, "Login failed")
	})

	e2eApp.AssertMinimumCoverage(t, 100)
}

func TestE2E_OperationalEndpoints(t *testing.T) {
	e2eApp := startApp(t)
	client := e2eApp.Client()

	resp, err := client.Get("/health")
	require.NoError(t, err)
	resp.AssertStatus(t, http.StatusOK)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, err = client.Get("/docs/openapi.json")
	require.NoError(t, err)
	resp.AssertStatus(t, http.StatusOK)
	assert.Contains(t, resp.GetString(), "/auth/refresh-token")

	resp, err = client.Get("/metrics")
	require.NoError(t, err)
	resp.AssertStatus(t, http.StatusOK)

	assert.Equal(t, 0, e2eApp.CoverageTracker.HitCount(http.MethodGet, "/post"))
	assert.Equal(t, 1, e2eApp.CoverageTracker.HitCount(http.MethodGet, "/health"))
}
