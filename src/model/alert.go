package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Alert is a notification row waiting to be picked up by the external
// delivery pipeline. The event key is the sole deduplication mechanism:
// re-scanning the same date regenerates the same key and the insert is
// ignored on conflict.
type Alert struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	EventKey  string     `gorm:"not null;uniqueIndex" json:"event_key"`
	AlertType string     `gorm:"size:20;not null" json:"alert_type"`
	Symbol    string     `gorm:"size:20;not null;index" json:"symbol"`
	AsOf      time.Time  `gorm:"type:date;not null" json:"as_of"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `gorm:"index" json:"sent_at,omitempty"`
}

func (a *Alert) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

const (
	AlertTypeEntry = "ENTRY"
	AlertTypeExit  = "EXIT"
)
