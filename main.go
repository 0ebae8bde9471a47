package main

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"

	"signalscanner/src/connectors"
	"signalscanner/src/database"
	"signalscanner/src/repository"
	"signalscanner/src/server"
	"signalscanner/src/strategy"
	"signalscanner/src/universe"
)

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logger.SetFormatter(&logger.JSONFormatter{})
	} else {
		logger.SetFormatter(&logger.TextFormatter{
			FullTimestamp: true,
		})
	}
}

func main() {
	_ = godotenv.Load()
	SetupLogger()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	fmp := connectors.NewFMPClient()
	cache := universe.NewCache(repository.NewSymbolsCacheRepository(), fmp)
	engine := strategy.NewEngine(
		cache,
		fmp,
		repository.NewPositionRepository(),
		repository.NewAlertRepository(),
	)

	config := server.GetConfig()
	server.StartServer(config.Port, engine, repository.NewAlertRepository())
}
