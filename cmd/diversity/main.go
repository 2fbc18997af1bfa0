// Command diversity runs rarefaction, alpha/beta diversity, and PERMANOVA on
// an abundance table.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"gobiome/app"
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

	ctx := context.Background()
	table, groups, err := app.LoadInput(ctx, cfg, logger)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	service := app.NewPipelineService(cfg, logger, nil)
	result, err := service.RunDiversity(ctx, table, groups)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	logger.Info("rarefied table: %d samples, %d features",
		result.Rarefied.NumSamples(), result.Rarefied.NumFeatures())
	for sample, values := range result.Alpha {
		for metric, v := range values {
			logger.Info("alpha %s %s = %.4f", sample, metric, v)
		}
	}
	if result.Permanova != nil {
		logger.Info("PERMANOVA F=%.4f p=%.4f R2=%.4f (%d permutations)",
			result.Permanova.FStatistic, result.Permanova.PValue,
			result.Permanova.R2, result.Permanova.Permutations)
	}
}
