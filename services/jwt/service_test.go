package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/postline/testutils"
)

func TestService_Issue(t *testing.T) {
	cfg := testutils.GetTestConfig()
	clock := testutils.NewClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	service := NewService(cfg, nil)
	service.SetClock(clock.Now)

	t.Run("encodes subject and expiry", func(t *testing.T) {
		tokenString, err := service.Issue("user-123", 5*time.Second)
		require.NoError(t, err)

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
			return []byte(cfg.JWT.SecretKey), nil
		}, jwt.WithTimeFunc(clock.Now))
		require.NoError(t, err)

		claims := token.Claims.(*Claims)
		assert.Equal(t, "user-123", claims.Subject)
		assert.Equal(t, cfg.JWT.Issuer, claims.Issuer)
		assert.Equal(t, clock.Now().Add(5*time.Second).Unix(), claims.ExpiresAt.Unix())
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("unique token ids", func(t *testing.T) {
		first, err := service.Issue("user-123", time.Minute)
		require.NoError(t, err)
		second, err := service.Issue("user-123", time.Minute)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("empty subject rejected", func(t *testing.T) {
		_, err := service.Issue("", time.Minute)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})

	t.Run("generate token uses configured expiry", func(t *testing.T) {
		tokenString, err := service.GenerateToken("user-9")
		require.NoError(t, err)

		claims, err := service.ValidateToken(tokenString)
		require.NoError(t, err)
		assert.Equal(t, clock.Now().Add(cfg.JWT.AccessExpiry).Unix(), claims.ExpiresAt.Unix())
	})
}

func TestService_Verify(t *testing.T) {
	cfg := testutils.GetTestConfig()
	clock := testutils.NewClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	service := NewService(cfg, nil)
	service.SetClock(clock.Now)

	t.Run("valid token", func(t *testing.T) {
		tokenString, err := service.Issue("user-123", time.Minute)
		require.NoError(t, err)

		userID, err := service.Verify(tokenString)

		require.NoError(t, err)
		assert.Equal(t, "user-123", userID)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := service.Verify("invalid.token.string")
		testutils.AssertErrorType(t, ErrMalformedToken, err)

		_, err = service.Verify("")
		testutils.AssertErrorType(t, ErrMalformedToken, err)
	})

	t.Run("bad signature", func(t *testing.T) {
		tokenString, err := service.Issue("user-123", time.Minute)
		require.NoError(t, err)

		other := testutils.GetTestConfig()
		other.JWT.SecretKey = "Zr8Qm2Wv6Yt1Np4Kx9Lb3Hd7Fc5Gs0Ja2Ue"
		otherService := NewService(other, nil)
		otherService.SetClock(clock.Now)

		_, err = otherService.Verify(tokenString)
		testutils.AssertErrorType(t, ErrInvalidSignature, err)
	})

	t.Run("tampered token", func(t *testing.T) {
		tokenString, err := service.Issue("user-123", time.Minute)
		require.NoError(t, err)

		_, err = service.Verify(tokenString + "m")
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		tokenString, err := service.Issue("user-123", 5*time.Second)
		require.NoError(t, err)

		later := testutils.NewClock(clock.Now().Add(6 * time.Second))
		service.SetClock(later.Now)
		defer service.SetClock(clock.Now)

		_, err = service.Verify(tokenString)
		testutils.AssertErrorType(t, ErrExpiredToken, err)
	})

	t.Run("none algorithm rejected", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(clock.Now()),
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		}}
		token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		userID, err := service.Verify(tokenString)

		assert.Error(t, err)
		assert.Empty(t, userID)
	})

	t.Run("missing subject rejected", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(clock.Now()),
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		}}
		tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.SecretKey))
		require.NoError(t, err)

		_, err = service.Verify(tokenString)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})

	t.Run("foreign issuer rejected", func(t *testing.T) {
		other := testutils.GetTestConfig()
		other.JWT.Issuer = "other-issuer"
		otherService := NewService(other, nil)
		otherService.SetClock(clock.Now)

		tokenString, err := otherService.Issue("user-123", time.Minute)
		require.NoError(t, err)

		userID, err := service.Verify(tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Empty(t, userID)
	})

	t.Run("missing issuer rejected", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(clock.Now()),
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		}}
		tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.SecretKey))
		require.NoError(t, err)

		_, err = service.Verify(tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry rejected", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"}}
		tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.SecretKey))
		require.NoError(t, err)

		_, err = service.Verify(tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
