package repository

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"signalscanner/src/database"
	"signalscanner/src/model"
)

// SymbolsCacheRepository owns the symbols_cache table. The cache only ever
// holds one snapshot: a refresh deletes everything and reinserts inside a
// single transaction, so readers never observe a mix of two refreshes.
type SymbolsCacheRepository struct {
	db *gorm.DB
}

// NewSymbolsCacheRepository creates a repository bound to the main database.
func NewSymbolsCacheRepository() *SymbolsCacheRepository {
	return &SymbolsCacheRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or custom sessions/transactions.
func (r *SymbolsCacheRepository) WithDB(db *gorm.DB) *SymbolsCacheRepository {
	return &SymbolsCacheRepository{db: db}
}

// GetAll returns every cached symbol entry.
func (r *SymbolsCacheRepository) GetAll(ctx context.Context) ([]model.SymbolsCache, error) {
	var entries []model.SymbolsCache

	err := r.db.WithContext(ctx).Find(&entries).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SymbolsCacheRepository",
			"op":   "GetAll",
		}).WithError(err).Error("Failed to read symbols cache")
		return nil, err
	}

	return entries, nil
}

// ReplaceAll atomically swaps the cache content for a fresh snapshot.
func (r *SymbolsCacheRepository) ReplaceAll(ctx context.Context, symbols []string, now time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.SymbolsCache{}).Error; err != nil {
			return err
		}
		if len(symbols) == 0 {
			return nil
		}

		entries := make([]model.SymbolsCache, 0, len(symbols))
		for _, symbol := range symbols {
			entries = append(entries, model.SymbolsCache{Symbol: symbol, UpdatedAt: now})
		}
		return tx.CreateInBatches(entries, 500).Error
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "SymbolsCacheRepository",
			"op":      "ReplaceAll",
			"symbols": len(symbols),
		}).WithError(err).Error("Failed to replace symbols cache")
		return err
	}

	return nil
}
