package refreshtoken

import (
	"time"
)

// RefreshToken is one member of a user's active session set. Only the SHA-256
// hash of the opaque token is stored.
type RefreshToken struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"size:36;not null;index"`
	TokenHash  string    `json:"-" gorm:"uniqueIndex;size:64;not null"`
	IPAddress  string    `json:"ip_address" gorm:"size:64"`
	DeviceInfo string    `json:"device_info" gorm:"size:500"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsed   time.Time `json:"last_used"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// ConsumedRefreshToken records a token that left the active set by rotation or
// logout, so a later presentation can be attributed to its former owner.
// Rows older than the replay window are ignored and eventually deleted.
type ConsumedRefreshToken struct {
	TokenHash  string    `gorm:"primaryKey;size:64"`
	UserID     string    `gorm:"size:36;not null;index"`
	ConsumedAt time.Time `gorm:"not null;index"`
}

func (ConsumedRefreshToken) TableName() string {
	return "consumed_refresh_tokens"
}

type SessionInfo struct {
	IPAddress string
	UserAgent string
}
