package handler

import (
	"encoding/json"
	"net/http"

	logger "github.com/sirupsen/logrus"
)

type healthResponse struct {
	OK bool `json:"ok"`
}

// HealthHandler returns a trivial liveness probe with no dependencies.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(healthResponse{OK: true}); err != nil {
			logger.WithError(err).Error("failed to encode health response")
		}
	}
}
