// Command api serves stored analysis runs over HTTP.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"gobiome/adapters/postgres"
	"gobiome/api"
	"gobiome/internal"
	"gobiome/internal/config"
)

func main() {
	godotenv.Load()
	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := postgres.Connect(cfg.Database.URL)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := postgres.NewRunRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	server := api.NewServer(repo, logger)
	if err := server.Start(cfg.Server.Port); err != nil {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}
