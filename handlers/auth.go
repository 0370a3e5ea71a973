package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/postline/middleware/jwtshared"
	"github.com/tech-arch1tect/postline/services/logging"
	"github.com/tech-arch1tect/postline/services/session"
	"go.uber.org/zap"
)

const (
	msgRegistrationFailed  = "Registration failed"
	msgRegisterFields      = "Username, email and password are required"
	msgBioTooLong          = "Bio must be at most 500 characters"
	msgLoginFailed         = "Login failed"
	msgLoginFields         = "Email and password are required"
	msgInvalidRefreshToken = "Invalid refresh token"
	msgRefreshRequired     = "Refresh token is required"
	msgLoggedOut           = "Logged out successfully"
	msgAccountDeleted      = "Account deleted successfully"
	msgInvalidBody         = "Invalid request body"
)

type RegisterRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ProfileImage string `json:"profileImage,omitempty"`
	Bio          string `json:"bio,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RegisterResponse struct {
	ID           string `json:"id"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ProfileResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`
	Bio          string `json:"bio"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type AuthHandler struct {
	sessions *session.Service
	logger   *logging.Service
}

func NewAuthHandler(sessions *session.Service, logger *logging.Service) *AuthHandler {
	return &AuthHandler{sessions: sessions, logger: logger}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, msgRegisterFields)
	}

	s, err := h.sessions.Register(c.Request().Context(), session.RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		ProfileImage: req.ProfileImage,
		Bio:          req.Bio,
	}, clientInfo(c))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrValidation):
			return echo.NewHTTPError(http.StatusUnauthorized, msgRegisterFields)
		case errors.Is(err, session.ErrBioTooLong):
			return echo.NewHTTPError(http.StatusUnauthorized, msgBioTooLong)
		case errors.Is(err, session.ErrDuplicateIdentity):
			return echo.NewHTTPError(http.StatusUnauthorized, msgRegistrationFailed)
		}
		return err
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		ID:           s.UserID,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	s, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, msgLoginFields)
		case errors.Is(err, session.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusBadRequest, msgLoginFailed)
		}
		return err
	}

	return c.JSON(http.StatusOK, TokenResponse{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidRefreshToken)
	}

	s, err := h.sessions.Refresh(c.Request().Context(), req.RefreshToken, clientInfo(c))
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidRefreshToken)
		}
		return err
	}

	return c.JSON(http.StatusOK, TokenResponse{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, msgRefreshRequired)
	}

	if err := h.sessions.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidRefreshToken)
		}
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: msgLoggedOut})
}

func (h *AuthHandler) Me(c echo.Context) error {
	user := jwtshared.GetCurrentUser(c)
	return c.JSON(http.StatusOK, ProfileResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		ProfileImage: user.ProfileImage,
		Bio:          user.Bio,
	})
}

func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	user := jwtshared.GetCurrentUser(c)
	if err := h.sessions.DeleteAccount(c.Request().Context(), user.ID); err != nil {
		return err
	}

	h.logger.Info("account deleted", zap.String("user_id", user.ID))
	return c.JSON(http.StatusOK, MessageResponse{Message: msgAccountDeleted})
}

func clientInfo(c echo.Context) session.ClientInfo {
	return session.ClientInfo{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
