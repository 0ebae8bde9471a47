package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"signalscanner/src/strategy"
)

type jobRunner interface {
	RunDailyJob(ctx context.Context, asOf time.Time) (strategy.DailyJobResult, error)
}

// Scheduler runs the daily scan unattended on a cron schedule. The job is
// idempotent, so an overlap with a manually triggered run is harmless.
type Scheduler struct {
	cron    *cron.Cron
	engine  jobRunner
	spec    string
	timeout time.Duration
	logger  *logrus.Entry
	now     func() time.Time
}

func New(engine jobRunner, config Config) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		engine:  engine,
		spec:    config.DailyJobSchedule,
		timeout: time.Duration(config.JobTimeoutMin) * time.Minute,
		logger:  logrus.WithField("component", "scheduler"),
		now:     time.Now,
	}
}

// Start registers the daily job and begins the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runDailyJob); err != nil {
		return fmt.Errorf("failed to schedule daily job: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("schedule", s.spec).Info("Scheduler started")
	return nil
}

// Stop halts the cron loop and returns a context that is done once any
// in-flight job has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping scheduler")
	return s.cron.Stop()
}

func (s *Scheduler) runDailyJob() {
	now := s.now().UTC()
	asOf := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	log := s.logger.WithField("as_of", asOf.Format("2006-01-02"))
	log.Info("Scheduled daily job starting")

	result, err := s.engine.RunDailyJob(ctx, asOf)
	if err != nil {
		log.WithError(err).Error("Scheduled daily job failed")
		return
	}

	log.WithFields(logrus.Fields{
		"new_entry_alerts": result.NewEntryAlerts,
		"new_exit_alerts":  result.NewExitAlerts,
	}).Info("Scheduled daily job complete")
}
