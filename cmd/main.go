package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"signalscanner/src/connectors"
	"signalscanner/src/database"
	"signalscanner/src/repository"
	"signalscanner/src/scheduler"
	"signalscanner/src/strategy"
	"signalscanner/src/universe"
)

var Version string

func main() {
	_ = godotenv.Load()
	setupLogger()

	app := cli.NewApp()
	app.Name = "Signal Scanner CMD"
	app.Usage = "The signal scanner command line interface"

	app.Commands = []cli.Command{
		scanCMD,
		schedulerCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	scanCMD = cli.Command{
		Name:   "scan",
		Usage:  "run the daily entry/exit scan once",
		Action: scanAction,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "as-of",
				Usage: "date to scan (YYYY-MM-DD), defaults to today (UTC)",
			},
		},
		Description: `Run the entry and exit scan for one date and exit`,
	}
	schedulerCMD = cli.Command{
		Name:        "scheduler",
		Usage:       "run the daily scan on a cron schedule",
		Action:      schedulerAction,
		Flags:       []cli.Flag{},
		Description: `Run the scanner unattended until interrupted`,
	}
)

func setupLogger() {
	level, err := logrus.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func buildEngine() *strategy.Engine {
	fmp := connectors.NewFMPClient()
	cache := universe.NewCache(repository.NewSymbolsCacheRepository(), fmp)
	return strategy.NewEngine(
		cache,
		fmp,
		repository.NewPositionRepository(),
		repository.NewAlertRepository(),
	)
}

func scanAction(c *cli.Context) error {
	logrus.Info("Starting scan CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	asOf := time.Now().UTC()
	if asOfFlag := c.String("as-of"); asOfFlag != "" {
		parsed, err := time.Parse("2006-01-02", asOfFlag)
		if err != nil {
			return fmt.Errorf("invalid --as-of %q, expected YYYY-MM-DD: %w", asOfFlag, err)
		}
		asOf = parsed
	} else {
		asOf = time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	}

	result, err := buildEngine().RunDailyJob(context.Background(), asOf)
	if err != nil {
		logrus.WithError(err).Error("Daily job failed")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"as_of":            asOf.Format("2006-01-02"),
		"new_entry_alerts": result.NewEntryAlerts,
		"new_exit_alerts":  result.NewExitAlerts,
	}).Info("Scan complete")
	return nil
}

func schedulerAction(_ *cli.Context) error {
	logrus.Info("Starting scheduler CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	sched := scheduler.New(buildEngine(), scheduler.GetConfig())
	if err := sched.Start(); err != nil {
		logrus.WithError(err).Error("Failed to start scheduler")
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	<-sched.Stop().Done()
	logrus.Info("Scheduler stopped")
	return nil
}
