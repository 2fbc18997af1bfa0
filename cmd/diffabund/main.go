// Command diffabund runs the configured differential abundance method on an
// abundance table and prints the significant features.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"gobiome/app"
	"gobiome/domain/abundance"
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
	result, err := service.RunDifferential(ctx, table, groups)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	logger.Info("%s: %d significant of %d tested (%d total) features",
		cfg.Differential.Method, len(result.Significant),
		result.TestedFeatures, result.TotalFeatures)
	for _, res := range result.Significant {
		switch v := res.(type) {
		case abundance.PValueResult:
			logger.Info("  %s padj=%.4g log2FC=%.3f", v.Feature, v.AdjustedP, v.Log2FoldChange)
		case abundance.DetectionResult:
			logger.Info("  %s W=%.0f detected", v.Feature, v.WStatistic)
		}
	}
}
