package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"signalscanner/src/database"
	"signalscanner/src/model"
)

// AlertRepository owns the alerts table. The event_key unique constraint is
// the single source of truth for "was this alert already created": the
// insert is a no-op on conflict and RecordIfAbsent reports whether a row
// was actually written.
type AlertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a repository bound to the main database.
func NewAlertRepository() *AlertRepository {
	return &AlertRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or custom sessions/transactions.
func (r *AlertRepository) WithDB(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// RecordIfAbsent inserts an alert unless the event key already exists.
// Returns whether a new row was created.
func (r *AlertRepository) RecordIfAbsent(ctx context.Context, eventKey, alertType, symbol string, asOf time.Time, message string) (bool, error) {
	alert := model.Alert{
		EventKey:  eventKey,
		AlertType: alertType,
		Symbol:    symbol,
		AsOf:      asOf,
		Message:   message,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_key"}},
			DoNothing: true,
		}).
		Create(&alert)
	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":      "AlertRepository",
			"op":        "RecordIfAbsent",
			"event_key": eventKey,
		}).WithError(result.Error).Error("Failed to insert alert")
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// ListPending returns alerts not yet acknowledged by the delivery system,
// oldest first.
func (r *AlertRepository) ListPending(ctx context.Context, limit int) ([]model.Alert, error) {
	if limit <= 0 {
		limit = 200 // default safety limit
	}

	var alerts []model.Alert

	err := r.db.WithContext(ctx).
		Where("sent_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&alerts).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "AlertRepository",
			"op":    "ListPending",
			"limit": limit,
		}).WithError(err).Error("Failed to list pending alerts")
		return nil, err
	}

	return alerts, nil
}

// FindByID fetches a single alert. Returns (nil, nil) if not found.
func (r *AlertRepository) FindByID(ctx context.Context, id string) (*model.Alert, error) {
	var alert model.Alert

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // not found is not an error
		}
		return nil, err
	}

	return &alert, nil
}

// MarkSent records the delivery acknowledgment timestamp. Already-sent
// alerts keep their original sent_at and the call succeeds unchanged.
// Returns (nil, nil) when the id is unknown.
func (r *AlertRepository) MarkSent(ctx context.Context, id string, now time.Time) (*model.Alert, error) {
	alert, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, nil
	}
	if alert.SentAt != nil {
		return alert, nil
	}

	// Guard the update on sent_at still being NULL so a concurrent
	// acknowledgment cannot move an already-set timestamp.
	err = r.db.WithContext(ctx).
		Model(&model.Alert{}).
		Where("id = ? AND sent_at IS NULL", id).
		Update("sent_at", now).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "AlertRepository",
			"op":   "MarkSent",
			"id":   id,
		}).WithError(err).Error("Failed to mark alert sent")
		return nil, err
	}

	return r.FindByID(ctx, id)
}
