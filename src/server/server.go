package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"signalscanner/src/handler"
	"signalscanner/src/repository"
	"signalscanner/src/strategy"
)

// NewRouter wires the HTTP surface: the daily-job trigger, the pending
// alert feed, delivery acknowledgment and the health probe.
func NewRouter(engine *strategy.Engine, alerts *repository.AlertRepository) chi.Router {
	r := chi.NewRouter()

	r.Get("/health", handler.HealthHandler())
	r.Post("/jobs/daily", handler.RunDailyJobHandler(engine))
	r.Get("/alerts/pending", handler.PendingAlertsHandler(alerts))
	r.Post("/alerts/{alertID}/mark-sent", handler.MarkAlertSentHandler(alerts, time.Now))

	return r
}

// StartServer runs the HTTP server until SIGINT or SIGTERM, then shuts
// down gracefully.
func StartServer(port string, engine *strategy.Engine, alerts *repository.AlertRepository) {
	r := NewRouter(engine, alerts)

	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
