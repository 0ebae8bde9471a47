package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"signalscanner/src/database"
	"signalscanner/src/model"
)

// PositionRepository owns the positions table. Deduplication of opens is
// delegated to the (symbol, entry_date) unique constraint via an
// insert-or-ignore, never to a read-then-write check, so overlapping runs
// for the same date cannot race past each other.
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a repository bound to the main database.
func NewPositionRepository() *PositionRepository {
	return &PositionRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or custom sessions/transactions.
func (r *PositionRepository) WithDB(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// OpenIfAbsent inserts a new OPEN position unless one already exists for
// (symbol, entryDate). Returns whether a new row was created.
func (r *PositionRepository) OpenIfAbsent(ctx context.Context, symbol string, entryDate time.Time, entryPrice decimal.Decimal) (bool, error) {
	position := model.Position{
		Symbol:     symbol,
		EntryDate:  entryDate,
		EntryPrice: entryPrice,
		Status:     model.PositionStatusOpen,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}, {Name: "entry_date"}},
			DoNothing: true,
		}).
		Create(&position)
	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "PositionRepository",
			"op":     "OpenIfAbsent",
			"symbol": symbol,
		}).WithError(result.Error).Error("Failed to insert position")
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// ListOpen returns all positions that have not been closed yet.
func (r *PositionRepository) ListOpen(ctx context.Context) ([]model.Position, error) {
	var positions []model.Position

	err := r.db.WithContext(ctx).
		Where("status = ?", model.PositionStatusOpen).
		Order("entry_date ASC").
		Find(&positions).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "ListOpen",
		}).WithError(err).Error("Failed to list open positions")
		return nil, err
	}

	return positions, nil
}

// Close marks a position CLOSED and sets all three exit fields in a single
// update. Callers must not close the same id twice within one scan; the
// scan reads open positions once, so that holds by construction.
func (r *PositionRepository) Close(ctx context.Context, id string, exitDate time.Time, exitPrice decimal.Decimal, exitReason string) error {
	err := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.PositionStatusClosed,
			"exit_date":   exitDate,
			"exit_price":  exitPrice,
			"exit_reason": exitReason,
		}).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "Close",
			"id":   id,
		}).WithError(err).Error("Failed to close position")
		return err
	}

	return nil
}

// FindByID fetches a single position. Returns (nil, nil) if not found.
func (r *PositionRepository) FindByID(ctx context.Context, id string) (*model.Position, error) {
	var position model.Position

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // not found is not an error
		}
		return nil, err
	}

	return &position, nil
}
