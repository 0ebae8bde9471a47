package model

import "time"

// SymbolsCache holds one snapshot of the index universe. The whole table is
// replaced on refresh (delete all, insert all), never partially updated.
type SymbolsCache struct {
	Symbol    string    `gorm:"size:20;primaryKey" json:"symbol"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SymbolsCache) TableName() string {
	return "symbols_cache"
}
