package connectors

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	FMPAPIKey         string  `envconfig:"FMP_API_KEY" default:""`
	FMPBaseURL        string  `envconfig:"FMP_BASE_URL" default:"https://financialmodelingprep.com/stable"`
	RequestsPerSecond float64 `envconfig:"FMP_REQUESTS_PER_SECOND" default:"4"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
