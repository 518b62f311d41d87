package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type APIKey struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	KeyHash     string    `gorm:"uniqueIndex;not null" json:"-"`
	KeyPrefix   string    `gorm:"size:16" json:"key_prefix"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description,omitempty"`
	Tier        int       `gorm:"not null;default:1" json:"tier"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`

	// Quota accounting. Zero limits mean "use the tier default".
	DailyLimit   int64 `json:"daily_limit"`
	MonthlyLimit int64 `json:"monthly_limit"`
	UsageToday   int64 `gorm:"default:0" json:"usage_today"`
	UsageMonth   int64 `gorm:"default:0" json:"usage_month"`

	// Window markers: "2006-01-02" for daily, "2006-01" for monthly.
	LastResetDaily   string `gorm:"size:10" json:"last_reset_daily"`
	LastResetMonthly string `gorm:"size:7" json:"last_reset_monthly"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func (a *APIKey) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (APIKey) TableName() string {
	return "api_keys"
}

// EffectiveDailyLimit resolves the key's daily limit, falling back to the
// tier default when the key carries no override.
func (a *APIKey) EffectiveDailyLimit() int64 {
	if a.DailyLimit > 0 {
		return a.DailyLimit
	}
	return CapabilitiesForTier(a.Tier).DailyLimit
}

func (a *APIKey) EffectiveMonthlyLimit() int64 {
	if a.MonthlyLimit > 0 {
		return a.MonthlyLimit
	}
	return CapabilitiesForTier(a.Tier).MonthlyLimit
}
