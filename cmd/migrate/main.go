package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/pkg/logger"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using existing environment variables")
	}

	logger.Init(os.Getenv("APP_ENV"))

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("migration command failed")
		os.Exit(1)
	}
}
