package main

import (
	"github.com/Rrens/routine-advisor/internal/config"
	"github.com/Rrens/routine-advisor/internal/logging"
	"github.com/Rrens/routine-advisor/internal/repository/postgres"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}

	log.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Database).
		Msg("Migrating client state schema")

	if err := postgres.RunMigrations(cfg.Database.DSN()); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
