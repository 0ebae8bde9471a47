package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"signalscanner/src/model"
)

const (
	defaultPendingLimit = 200
	maxPendingLimit     = 500
)

type pendingAlertLister interface {
	ListPending(ctx context.Context, limit int) ([]model.Alert, error)
}

type alertSentMarker interface {
	MarkSent(ctx context.Context, id string, now time.Time) (*model.Alert, error)
}

type alertResponse struct {
	ID        string `json:"id"`
	AlertType string `json:"alert_type"`
	Symbol    string `json:"symbol"`
	AsOf      string `json:"as_of"`
	Message   string `json:"message"`
}

// PendingAlertsHandler lists alerts not yet acknowledged by the delivery
// system, oldest first. limit must be within [1, 500], defaulting to 200.
func PendingAlertsHandler(repo pendingAlertLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultPendingLimit
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed < 1 || parsed > maxPendingLimit {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		alerts, err := repo.ListPending(r.Context(), limit)
		if err != nil {
			logger.WithError(err).Error("failed to list pending alerts")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		response := make([]alertResponse, 0, len(alerts))
		for _, alert := range alerts {
			response = append(response, alertResponse{
				ID:        alert.ID,
				AlertType: alert.AlertType,
				Symbol:    alert.Symbol,
				AsOf:      alert.AsOf.Format(dateLayout),
				Message:   alert.Message,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.WithError(err).Error("failed to encode pending alerts response")
		}
	}
}

type markSentResponse struct {
	Success bool      `json:"success"`
	ID      string    `json:"id"`
	SentAt  time.Time `json:"sent_at"`
}

// MarkAlertSentHandler acknowledges delivery of one alert. Unknown ids get
// a 404; re-acknowledging an already-sent alert succeeds and returns the
// original sent_at.
func MarkAlertSentHandler(repo alertSentMarker, now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}

	return func(w http.ResponseWriter, r *http.Request) {
		alertID := chi.URLParam(r, "alertID")

		alert, err := repo.MarkSent(r.Context(), alertID, now().UTC())
		if err != nil {
			logger.WithError(err).WithField("id", alertID).Error("failed to mark alert sent")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if alert == nil {
			http.Error(w, "alert not found", http.StatusNotFound)
			return
		}
		if alert.SentAt == nil {
			logger.WithField("id", alertID).Error("mark-sent returned alert without sent_at")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(markSentResponse{
			Success: true,
			ID:      alert.ID,
			SentAt:  *alert.SentAt,
		}); err != nil {
			logger.WithError(err).Error("failed to encode mark-sent response")
		}
	}
}
