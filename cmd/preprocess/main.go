// Command preprocess ingests FASTQ files, quality filters them, and infers
// an abundance table with taxonomy assignments.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"gobiome/adapters/preprocess"
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
	if cfg.Paths.FastqDir == "" {
		logger.Error("FASTQ_DIR is required")
		os.Exit(1)
	}

	reads, err := preprocess.ReadFastqDir(cfg.Paths.FastqDir)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	service := app.NewPipelineService(cfg, logger, nil)
	result, err := service.RunPreprocessing(ctx, reads)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	logger.Info("kept %d of %d reads", result.ReadsKept, result.ReadsIn)
	logger.Info("inferred %d features across %d samples",
		result.Table.NumFeatures(), result.Table.NumSamples())
	for _, feature := range result.Table.Features() {
		logger.Info("  %s: %s", feature, result.Taxonomy[feature])
	}
}
