package app

import (
	"context"

	"gobiome/adapters/excel"
	"gobiome/domain/biom"
	"gobiome/internal"
	"gobiome/internal/config"
	"gobiome/internal/testkit"
	"gobiome/ports"
)

// LoadInput resolves the abundance table for a run: the configured workbook
// when TABLE_FILE is set, otherwise a seeded synthetic demo community
func LoadInput(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*biom.AbundanceTable, biom.GroupAssignment, error) {
	if cfg.Paths.TableFile != "" {
		logger.Info("input: reading abundance workbook %s", cfg.Paths.TableFile)
		return LoadInputFrom(ctx, excel.NewTableReader(cfg.Paths.TableFile))
	}

	logger.Warn("input: TABLE_FILE not set, generating a synthetic demo community")
	gen := testkit.NewCommunityGenerator(testkit.DefaultCommunityConfig())
	return gen.Generate()
}

// LoadInputFrom loads the run input through any table reader port
func LoadInputFrom(ctx context.Context, reader ports.TableReader) (*biom.AbundanceTable, biom.GroupAssignment, error) {
	return reader.ReadTable(ctx)
}
