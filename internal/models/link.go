package models

import (
	"time"

	"github.com/google/uuid"
)

// LinkStatus is derived from the stored flags at read time so redirect
// logic branches on one enum instead of boolean combinations.
type LinkStatus int

const (
	StatusActive LinkStatus = iota
	StatusInactive
	StatusExpired
	StatusDeleted
)

func (s LinkStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	case StatusExpired:
		return "expired"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ShortLink maps a code to its destination. The code column is unique across
// all rows, deleted included: a soft-deleted link keeps its code reserved.
// Tags is stored comma-separated.
type ShortLink struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	OriginalURL string    `gorm:"type:text;not null" json:"original_url"`
	Title       string    `gorm:"size:255" json:"title,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Tags        string    `gorm:"size:500" json:"tags,omitempty"`
	APIKeyID    uuid.UUID `gorm:"type:uuid;index" json:"api_key_id"`

	PasswordHash string     `gorm:"size:255" json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`

	IsActive  bool `gorm:"default:true" json:"is_active"`
	IsDeleted bool `gorm:"default:false" json:"is_deleted"`

	// Display-only cache of the ClickEvent count; never authoritative.
	ClickCount int64 `gorm:"default:0" json:"click_count"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ShortLink) TableName() string {
	return "short_links"
}

// Status derives the link's lifecycle state at the given instant.
// Deletion wins over expiry, expiry over the active flag.
func (l *ShortLink) Status(now time.Time) LinkStatus {
	if l.IsDeleted {
		return StatusDeleted
	}
	if l.ExpiresAt != nil && l.ExpiresAt.Before(now) {
		return StatusExpired
	}
	if !l.IsActive {
		return StatusInactive
	}
	return StatusActive
}

// PasswordProtected reports whether resolving requires a password.
func (l *ShortLink) PasswordProtected() bool {
	return l.PasswordHash != ""
}
