package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Position is one tracked trade opened by the entry scan. At most one
// position exists per (symbol, entry_date), enforced by the composite
// unique index rather than application checks.
type Position struct {
	ID         string           `gorm:"type:uuid;primaryKey" json:"id"`
	Symbol     string           `gorm:"size:20;not null;index;uniqueIndex:uq_positions_symbol_entry_date" json:"symbol"`
	EntryDate  time.Time        `gorm:"type:date;not null;uniqueIndex:uq_positions_symbol_entry_date" json:"entry_date"`
	EntryPrice decimal.Decimal  `gorm:"type:numeric(18,6);not null" json:"entry_price"`
	Status     string           `gorm:"size:20;not null;default:OPEN;index" json:"status"`
	ExitDate   *time.Time       `gorm:"type:date" json:"exit_date,omitempty"`
	ExitPrice  *decimal.Decimal `gorm:"type:numeric(18,6)" json:"exit_price,omitempty"`
	ExitReason *string          `gorm:"size:20" json:"exit_reason,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (p *Position) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

const (
	PositionStatusOpen   = "OPEN"
	PositionStatusClosed = "CLOSED"
)

const (
	ExitReasonStopLoss = "STOP_LOSS"
	ExitReasonTimeExit = "TIME_EXIT"
)
