// Package session issues access/refresh pairs and rotates refresh tokens.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tech-arch1tect/postline/services/logging"
	"github.com/tech-arch1tect/postline/services/metrics"
	"github.com/tech-arch1tect/postline/services/password"
	"github.com/tech-arch1tect/postline/services/refreshtoken"
	"github.com/tech-arch1tect/postline/services/users"
	"go.uber.org/zap"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrDuplicateIdentity   = errors.New("email or username already in use")
	ErrBioTooLong          = errors.New("bio must be at most 500 characters")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

type ClientInfo = refreshtoken.SessionInfo

type AccessTokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

type Session struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	ProfileImage string
	Bio          string
}

type Service struct {
	users   *users.Service
	tokens  *refreshtoken.Service
	access  AccessTokenIssuer
	hasher  password.Hasher
	metrics *metrics.Service
	logger  *logging.Service
}

func NewService(
	userService *users.Service,
	tokens *refreshtoken.Service,
	access AccessTokenIssuer,
	hasher password.Hasher,
	metricsService *metrics.Service,
	logger *logging.Service,
) *Service {
	return &Service{
		users:   userService,
		tokens:  tokens,
		access:  access,
		hasher:  hasher,
		metrics: metricsService,
		logger:  logger,
	}
}

func (s *Service) Register(ctx context.Context, input RegisterInput, client ClientInfo) (*Session, error) {
	if strings.TrimSpace(input.Username) == "" || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		s.metrics.AuthEvent("register", metrics.OutcomeFailure)
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		s.metrics.AuthEvent("register", metrics.OutcomeFailure)
		return nil, ErrDuplicateIdentity
	} else if !errors.Is(err, users.ErrUserNotFound) {
		return nil, err
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, users.NewUser{
		Username:       input.Username,
		Email:          input.Email,
		PasswordDigest: digest,
		ProfileImage:   input.ProfileImage,
		Bio:            input.Bio,
	})
	if err != nil {
		s.metrics.AuthEvent("register", metrics.OutcomeFailure)
		switch {
		case errors.Is(err, users.ErrDuplicateEmail), errors.Is(err, users.ErrDuplicateUsername):
			return nil, ErrDuplicateIdentity
		case errors.Is(err, users.ErrBioTooLong):
			return nil, ErrBioTooLong
		}
		return nil, err
	}

	session, err := s.open(ctx, user.ID, client)
	if err != nil {
		return nil, err
	}

	s.metrics.AuthEvent("register", metrics.OutcomeSuccess)
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return session, nil
}

func (s *Service) Login(ctx context.Context, email, pass string, client ClientInfo) (*Session, error) {
	if strings.TrimSpace(email) == "" || pass == "" {
		s.metrics.AuthEvent("login", metrics.OutcomeFailure)
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.metrics.AuthEvent("login", metrics.OutcomeFailure)
		if errors.Is(err, users.ErrUserNotFound) {
			s.logger.Info("login failed", zap.String("reason", "unknown email"))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(user.PasswordDigest, pass)
	if err != nil || !ok {
		s.metrics.AuthEvent("login", metrics.OutcomeFailure)
		if err != nil {
			s.logger.Error("stored password digest unreadable", zap.String("user_id", user.ID), zap.Error(err))
		} else {
			s.logger.Info("login failed", zap.String("user_id", user.ID), zap.String("reason", "password mismatch"))
		}
		return nil, ErrInvalidCredentials
	}

	session, err := s.open(ctx, user.ID, client)
	if err != nil {
		return nil, err
	}

	s.metrics.AuthEvent("login", metrics.OutcomeSuccess)
	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return session, nil
}

// Refresh exchanges an active refresh token for a new pair. Any token that is
// not active fails with ErrInvalidRefreshToken; if it was consumed by a user
// that still exists, that user's sessions are revoked first.
func (s *Service) Refresh(ctx context.Context, token string, client ClientInfo) (*Session, error) {
	if token == "" {
		s.metrics.AuthEvent("refresh", metrics.OutcomeFailure)
		return nil, ErrInvalidRefreshToken
	}

	userID, err := s.tokens.FindOwner(ctx, token)
	if err != nil {
		s.metrics.AuthEvent("refresh", metrics.OutcomeFailure)
		if errors.Is(err, refreshtoken.ErrTokenNotActive) {
			s.containReplay(ctx, token)
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	accessToken, err := s.access.GenerateToken(userID)
	if err != nil {
		return nil, err
	}
	next, err := s.tokens.Generate()
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Rotate(ctx, userID, token, next, client); err != nil {
		s.metrics.AuthEvent("refresh", metrics.OutcomeFailure)
		if errors.Is(err, refreshtoken.ErrTokenNotActive) {
			// Another request consumed the token between lookup and rotation.
			s.containReplay(ctx, token)
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	s.metrics.AuthEvent("refresh", metrics.OutcomeSuccess)
	return &Session{UserID: userID, AccessToken: accessToken, RefreshToken: next}, nil
}

// Logout is idempotent while the token still resolves to an existing user.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		s.metrics.AuthEvent("logout", metrics.OutcomeFailure)
		return ErrInvalidRefreshToken
	}

	userID, err := s.tokens.Remove(ctx, token)
	if err == nil {
		s.metrics.AuthEvent("logout", metrics.OutcomeSuccess)
		s.logger.Info("user logged out", zap.String("user_id", userID))
		return nil
	}
	if !errors.Is(err, refreshtoken.ErrTokenNotActive) {
		return err
	}

	if _, ok := s.consumedOwner(ctx, token); ok {
		s.metrics.AuthEvent("logout", metrics.OutcomeSuccess)
		return nil
	}

	s.metrics.AuthEvent("logout", metrics.OutcomeFailure)
	return ErrInvalidRefreshToken
}

func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.metrics.AuthEvent("delete_account", metrics.OutcomeSuccess)
	return nil
}

func (s *Service) open(ctx context.Context, userID string, client ClientInfo) (*Session, error) {
	accessToken, err := s.access.GenerateToken(userID)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.Generate()
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Add(ctx, userID, refreshToken, client); err != nil {
		return nil, err
	}

	return &Session{UserID: userID, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) containReplay(ctx context.Context, token string) {
	userID, ok := s.consumedOwner(ctx, token)
	if !ok {
		return
	}

	revoked, err := s.tokens.RevokeAll(ctx, userID)
	if err != nil {
		s.logger.Error("failed to revoke sessions after refresh token replay",
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}

	s.metrics.ReplayRevocation(revoked)
	s.logger.Warn("consumed refresh token presented, sessions revoked",
		zap.String("user_id", userID),
		zap.Int64("revoked", revoked))
}

// consumedOwner resolves a consumed token to a user that still exists.
func (s *Service) consumedOwner(ctx context.Context, token string) (string, bool) {
	userID, err := s.tokens.FindConsumedOwner(ctx, token)
	if err != nil {
		if !errors.Is(err, refreshtoken.ErrTokenNotConsumed) {
			s.logger.Error("consumed refresh token lookup failed", zap.Error(err))
		}
		return "", false
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		s.logger.Error("user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return "", false
	}
	return userID, exists
}
