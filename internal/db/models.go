package db

import (
	"time"
)

// Profile is a discoverable user profile.
//
// AudienceType distinguishes creators from consumers; discovery can pair
// either direction. Interests is a comma-separated list kept denormalized
// since it is only ever displayed, never queried by element.
type Profile struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	DisplayName  string `gorm:"size:64;not null"`
	Age          int    `gorm:"not null"`
	Gender       string `gorm:"size:16;not null"`
	AudienceType string `gorm:"size:16;not null;default:consumer"`
	State        string `gorm:"size:64"`
	City         string `gorm:"size:64"`
	Interests    string `gorm:"size:512"`
	MediaRef     string `gorm:"size:255"`
	Tier         string `gorm:"size:24;not null;default:free"`
	Verified     bool   `gorm:"default:false"`
	Active       bool   `gorm:"default:true"`
	LastActiveAt time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// LikeRecord is a directed like edge (sender -> recipient).
//
// Composite PK: (SenderID, RecipientID)
//   - A sender holds at most one live edge per recipient.
//
// Indexes:
//   - idx_recipient_sender(recipient_id, sender_id)
//     Optimizes the reciprocal-like lookup in match detection.
//   - idx_recipient_updated_sender(recipient_id, updated_at DESC, sender_id)
//     Optimizes "who liked me" listings with cursor pagination.
type LikeRecord struct {
	SenderID    uint64    `gorm:"primaryKey"`
	RecipientID uint64    `gorm:"primaryKey;index:idx_recipient_sender,priority:1;index:idx_recipient_updated_sender,priority:1"`
	IsSuper     bool      `gorm:"not null;type:tinyint(1)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;index:idx_recipient_updated_sender,priority:2,sort:desc"`
}

// Match is the materialized bidirectional relationship. The pair is stored
// ordered (UserLowID < UserHighID) so each pair occupies exactly one row.
type Match struct {
	UserLowID  uint64    `gorm:"primaryKey"`
	UserHighID uint64    `gorm:"primaryKey;index:idx_high_low"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// TierLimit is the tier -> daily limit configuration table.
// A limit of -1 means unlimited.
type TierLimit struct {
	Tier       string `gorm:"primaryKey;size:24"`
	Swipes     int    `gorm:"not null"`
	SuperLikes int    `gorm:"not null"`
	Rewinds    int    `gorm:"not null"`
}
