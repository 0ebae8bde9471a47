package strategy

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	UniverseCacheTTLHours int `envconfig:"UNIVERSE_CACHE_TTL_HOURS" default:"24"`
}

func (c Config) UniverseCacheTTL() time.Duration {
	return time.Duration(c.UniverseCacheTTLHours) * time.Hour
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
