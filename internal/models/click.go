package models

import "time"

// Device classifications for a click. Anything unrecognized is "unknown".
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// ClickEvent is one recorded visit to a short link. Rows are append-only:
// there is no update or delete path.
type ClickEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LinkID    uint      `gorm:"index:idx_link_clicked,priority:1;not null" json:"link_id"`
	ClickedAt time.Time `gorm:"index:idx_link_clicked,priority:2" json:"clicked_at"`

	DeviceType string `gorm:"size:20" json:"device_type"`
	Browser    string `gorm:"size:50" json:"browser"`
	OS         string `gorm:"size:50" json:"os"`
	Referrer   string `gorm:"type:text" json:"referrer,omitempty"`

	// Anonymized before insert: v4 last octet zeroed, v6 tail zeroed.
	IPAddress string `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent string `gorm:"size:500" json:"user_agent,omitempty"`
}

func (ClickEvent) TableName() string {
	return "click_events"
}
