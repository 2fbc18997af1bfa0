// Command pipeline runs the full analysis: diversity, differential
// abundance, and report generation, persisting the run when a database is
// configured.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"gobiome/adapters/postgres"
	"gobiome/app"
	"gobiome/internal"
	"gobiome/internal/config"
	"gobiome/internal/report"
	"gobiome/ports"
)

func main() {
	godotenv.Load()
	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var repo ports.RunRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		defer db.Close()
		runRepo := postgres.NewRunRepository(db)
		if err := runRepo.EnsureSchema(ctx); err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		repo = runRepo
	} else {
		logger.Warn("DATABASE_URL not set, run will not be persisted")
	}

	table, groups, err := app.LoadInput(ctx, cfg, logger)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	service := app.NewPipelineService(cfg, logger, repo)
	record, _, _, err := service.Run(ctx, table, groups)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	path, err := report.NewGenerator(cfg.Paths.ReportDir).Write(record)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	logger.Info("report written to %s", path)
}
