package refreshtoken

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mileusna/useragent"
	"github.com/tech-arch1tect/postline/config"
	"github.com/tech-arch1tect/postline/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTokenNotActive        = errors.New("refresh token is not active")
	ErrTokenNotConsumed      = errors.New("refresh token has no consumption record")
	ErrTokenGenerationFailed = errors.New("failed to generate secure token")
)

// Service owns the per-user sets of active refresh tokens and the bounded
// history of consumed ones. All set mutations go through this type.
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logging.Service
	now    func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

func NewService(db *gorm.DB, cfg *config.Config, logger *logging.Service) *Service {
	logger.Info("initializing refresh token service",
		zap.Int("token_length", cfg.RefreshToken.TokenLength),
		zap.Duration("replay_window", cfg.RefreshToken.ReplayWindow),
		zap.Duration("cleanup_interval", cfg.RefreshToken.CleanupInterval))

	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Generate returns a new opaque token. It is not stored until Add or Rotate.
func (s *Service) Generate() (string, error) {
	tokenBytes := make([]byte, s.config.RefreshToken.TokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		s.logger.Error("failed to generate secure refresh token", zap.Error(err))
		return "", ErrTokenGenerationFailed
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}

func (s *Service) Add(ctx context.Context, userID, token string, info SessionInfo) error {
	row := s.newRow(userID, hashToken(token), info)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.logger.Error("failed to store refresh token",
			zap.String("user_id", userID),
			zap.Error(err))
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.logger.Debug("refresh token added",
		zap.String("user_id", userID),
		logging.TokenHash(row.TokenHash))
	return nil
}

// Rotate replaces oldToken with newToken in userID's set. The removal is
// conditional: when oldToken is no longer in the set nothing changes and
// ErrTokenNotActive is returned, so only one of several concurrent rotations
// of the same token can succeed.
func (s *Service) Rotate(ctx context.Context, userID, oldToken, newToken string, info SessionInfo) error {
	oldHash := hashToken(oldToken)
	row := s.newRow(userID, hashToken(newToken), info)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND token_hash = ?", userID, oldHash).Delete(&RefreshToken{})
		if result.Error != nil {
			return fmt.Errorf("failed to remove rotated refresh token: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return ErrTokenNotActive
		}

		if err := s.recordConsumed(tx, oldHash, userID); err != nil {
			return err
		}

		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to store rotated refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTokenNotActive) {
			s.logger.Warn("refresh token rotation lost, token no longer active",
				zap.String("user_id", userID),
				logging.TokenHash(oldHash))
		} else {
			s.logger.Error("refresh token rotation failed",
				zap.String("user_id", userID),
				zap.Error(err))
		}
		return err
	}

	s.logger.Info("refresh token rotated",
		zap.String("user_id", userID),
		logging.TokenHash(oldHash))
	return nil
}

// Remove takes token out of whichever set holds it and returns that set's owner.
func (s *Service) Remove(ctx context.Context, token string) (string, error) {
	tokenHash := hashToken(token)
	var userID string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row RefreshToken
		if err := tx.Where("token_hash = ?", tokenHash).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotActive
			}
			return fmt.Errorf("database error: %w", err)
		}

		result := tx.Where("id = ?", row.ID).Delete(&RefreshToken{})
		if result.Error != nil {
			return fmt.Errorf("failed to remove refresh token: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return ErrTokenNotActive
		}

		userID = row.UserID
		return s.recordConsumed(tx, tokenHash, row.UserID)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("refresh token removed",
		zap.String("user_id", userID),
		logging.TokenHash(tokenHash))
	return userID, nil
}

// FindOwner returns the user whose active set contains token.
func (s *Service) FindOwner(ctx context.Context, token string) (string, error) {
	var row RefreshToken
	err := s.db.WithContext(ctx).Where("token_hash = ?", hashToken(token)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTokenNotActive
		}
		return "", fmt.Errorf("database error: %w", err)
	}
	return row.UserID, nil
}

// FindConsumedOwner returns the former owner of a token consumed within the
// replay window.
func (s *Service) FindConsumedOwner(ctx context.Context, token string) (string, error) {
	var row ConsumedRefreshToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND consumed_at >= ?", hashToken(token), s.windowStart()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTokenNotConsumed
		}
		return "", fmt.Errorf("database error: %w", err)
	}
	return row.UserID, nil
}

// RevokeAll empties userID's active set. Revoked tokens are recorded as
// consumed so a later replay or logout still resolves to userID.
func (s *Service) RevokeAll(ctx context.Context, userID string) (int64, error) {
	var revoked int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []RefreshToken
		if err := tx.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}

		result := tx.Where("user_id = ?", userID).Delete(&RefreshToken{})
		if result.Error != nil {
			return result.Error
		}
		revoked = result.RowsAffected

		for _, row := range rows {
			if err := s.recordConsumed(tx, row.TokenHash, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to revoke all user refresh tokens",
			zap.String("user_id", userID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to revoke all user refresh tokens: %w", err)
	}

	s.logger.Warn("all user refresh tokens revoked",
		zap.String("user_id", userID),
		zap.Int64("count", revoked))
	return revoked, nil
}

func (s *Service) ActiveCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&RefreshToken{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}
	return count, nil
}

// ListActive returns userID's sessions, newest first.
func (s *Service) ListActive(ctx context.Context, userID string) ([]RefreshToken, error) {
	var rows []RefreshToken
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return rows, nil
}

// DeleteForUser drops every active and consumed record of userID inside tx.
func DeleteForUser(tx *gorm.DB, userID string) error {
	if err := tx.Where("user_id = ?", userID).Delete(&RefreshToken{}).Error; err != nil {
		return fmt.Errorf("failed to delete refresh tokens: %w", err)
	}
	if err := tx.Where("user_id = ?", userID).Delete(&ConsumedRefreshToken{}).Error; err != nil {
		return fmt.Errorf("failed to delete consumed refresh tokens: %w", err)
	}
	return nil
}

func (s *Service) CleanupConsumedTokens() error {
	result := s.db.Where("consumed_at < ?", s.windowStart()).Delete(&ConsumedRefreshToken{})
	if result.Error != nil {
		s.logger.Error("failed to cleanup consumed refresh tokens", zap.Error(result.Error))
		return fmt.Errorf("failed to cleanup consumed tokens: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.logger.Info("cleaned up consumed refresh tokens", zap.Int64("count", result.RowsAffected))
	} else {
		s.logger.Debug("no consumed refresh tokens to cleanup")
	}
	return nil
}

func (s *Service) StartCleanupWorker() {
	interval := s.config.RefreshToken.CleanupInterval
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.CleanupConsumedTokens(); err != nil {
					s.logger.Error("refresh token cleanup worker failed", zap.Error(err))
				}
			case <-s.stop:
				return
			}
		}
	}()

	s.logger.Info("started refresh token cleanup worker", zap.Duration("interval", interval))
}

func (s *Service) StopCleanupWorker() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *Service) recordConsumed(tx *gorm.DB, tokenHash, userID string) error {
	tombstone := ConsumedRefreshToken{
		TokenHash:  tokenHash,
		UserID:     userID,
		ConsumedAt: s.now(),
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "consumed_at"}),
	}).Create(&tombstone).Error
	if err != nil {
		return fmt.Errorf("failed to record consumed refresh token: %w", err)
	}
	return nil
}

func (s *Service) newRow(userID, tokenHash string, info SessionInfo) RefreshToken {
	now := s.now()
	return RefreshToken{
		UserID:     userID,
		TokenHash:  tokenHash,
		IPAddress:  info.IPAddress,
		DeviceInfo: describeDevice(info.UserAgent),
		CreatedAt:  now,
		LastUsed:   now,
	}
}

func (s *Service) windowStart() time.Time {
	return s.now().Add(-s.config.RefreshToken.ReplayWindow)
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func describeDevice(userAgent string) string {
	if userAgent == "" {
		return ""
	}

	ua := useragent.Parse(userAgent)
	device := "desktop"
	switch {
	case ua.Bot:
		device = "bot"
	case ua.Tablet:
		device = "tablet"
	case ua.Mobile:
		device = "mobile"
	}

	desc := fmt.Sprintf("%s %s on %s %s (%s)", ua.Name, ua.Version, ua.OS, ua.OSVersion, device)
	if len(desc) > 500 {
		desc = desc[:500]
	}
	return desc
}
