package scheduler

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Six-field cron spec (with seconds). Default fires weekdays at
	// 21:30 UTC, after the US close.
	DailyJobSchedule string `envconfig:"DAILY_JOB_SCHEDULE" default:"0 30 21 * * 1-5"`
	JobTimeoutMin    int    `envconfig:"DAILY_JOB_TIMEOUT_MINUTES" default:"30"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
