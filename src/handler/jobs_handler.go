package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	logger "github.com/sirupsen/logrus"

	"signalscanner/src/strategy"
)

const dateLayout = "2006-01-02"

type dailyJobRunner interface {
	RunDailyJob(ctx context.Context, asOf time.Time) (strategy.DailyJobResult, error)
}

type dailyJobResponse struct {
	AsOf           string `json:"as_of"`
	NewEntryAlerts int    `json:"new_entry_alerts"`
	NewExitAlerts  int    `json:"new_exit_alerts"`
}

// RunDailyJobHandler triggers the entry and exit scan for the requested
// date. The operation is idempotent: repeating it for the same date does
// not create duplicate positions or alerts.
func RunDailyJobHandler(engine dailyJobRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asOfParam := r.URL.Query().Get("as_of")
		if asOfParam == "" {
			http.Error(w, "missing as_of", http.StatusBadRequest)
			return
		}

		asOf, err := time.Parse(dateLayout, asOfParam)
		if err != nil {
			http.Error(w, "invalid as_of, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		result, err := engine.RunDailyJob(r.Context(), asOf)
		if err != nil {
			logger.WithError(err).WithField("as_of", asOfParam).Error("daily job failed")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(dailyJobResponse{
			AsOf:           asOfParam,
			NewEntryAlerts: result.NewEntryAlerts,
			NewExitAlerts:  result.NewExitAlerts,
		}); err != nil {
			logger.WithError(err).Error("failed to encode daily job response")
		}
	}
}
