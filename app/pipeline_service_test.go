package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobiome/domain/abundance"
	"gobiome/domain/biom"
	"gobiome/domain/core"
	"gobiome/domain/run"
	"gobiome/internal"
	"gobiome/internal/config"
	"gobiome/internal/errors"
	"gobiome/internal/testkit"
)

func testConfig(method string) *config.Config {
	return &config.Config{
		Diversity: config.DiversityConfig{
			RarefactionDepth:      1000,
			RarefactionSeed:       42,
			AlphaMetrics:          []string{"shannon", "observed_otus"},
			BetaMetric:            "bray_curtis",
			PermanovaPermutations: 99,
		},
		Differential: config.DifferentialConfig{
			Method:                method,
			SignificanceThreshold: 0.05,
			MinPrevalence:         0.1,
			MinAbundance:          0.001,
		},
		Workers: 4,
	}
}

// memoryRepo records saved runs for assertions
type memoryRepo struct {
	saved []*run.Record
}

func (m *memoryRepo) SaveRun(ctx context.Context, record *run.Record) error {
	m.saved = append(m.saved, record)
	return nil
}

func (m *memoryRepo) GetRun(ctx context.Context, id core.RunID) (*run.Record, error) {
	for _, r := range m.saved {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.NotFound("run")
}

func (m *memoryRepo) ListRuns(ctx context.Context, limit int) ([]*run.Record, error) {
	return m.saved, nil
}

func TestPipelineRunEndToEnd(t *testing.T) {
	table, groups, err := testkit.NewCommunityGenerator(testkit.DefaultCommunityConfig()).Generate()
	require.NoError(t, err)

	cfg := testConfig("deseq2")
	repo := &memoryRepo{}
	logger := internal.NewLogger(internal.LogLevelError)
	service := NewPipelineService(cfg, logger, repo)

	record, div, diff, err := service.Run(context.Background(), table, groups)
	require.NoError(t, err)

	assert.Equal(t, "deseq2", record.Method)
	assert.False(t, record.StartedAt.IsZero())
	assert.False(t, record.CompletedAt.IsZero())
	assert.False(t, record.Fingerprint.IsEmpty())
	assert.Equal(t, diff.TotalFeatures, record.TotalFeatures)
	assert.Equal(t, diff.TestedFeatures, record.TestedFeatures)

	// Every persisted significant feature must satisfy the unified rule
	assert.Len(t, record.Significant, len(diff.Significant))
	for _, res := range diff.Significant {
		pv, ok := res.(abundance.PValueResult)
		require.True(t, ok, "deseq2 produces p-value results")
		assert.Less(t, pv.AdjustedP, cfg.Differential.SignificanceThreshold)
	}

	// The generator plants enrichment in the treatment group; the run should
	// recover at least one of those features
	assert.NotEmpty(t, diff.Significant, "planted effects should be detected")

	assert.NotNil(t, div.Permanova)
	assert.Greater(t, div.Permanova.PValue, 0.0)
	assert.LessOrEqual(t, div.Permanova.PValue, 1.0)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, record.ID, repo.saved[0].ID)
}

func TestPipelineRunUnknownMethod(t *testing.T) {
	table, groups, err := testkit.NewCommunityGenerator(testkit.DefaultCommunityConfig()).Generate()
	require.NoError(t, err)

	service := NewPipelineService(testConfig("limma"), internal.NewLogger(internal.LogLevelError), nil)
	_, _, _, err = service.Run(context.Background(), table, groups)
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnknownMethod, errors.GetCode(err))
}

func TestPipelineRunSingleSampleGroup(t *testing.T) {
	// A group with one sample yields no tested features and an empty, but
	// internally consistent, significant set
	table, err := biom.NewAbundanceTable(
		[]core.SampleID{"s1", "s2", "s3"},
		map[core.FeatureID][]int64{
			"ASV1": {100, 50, 75},
			"ASV2": {200, 150, 180},
		},
	)
	require.NoError(t, err)
	groups, err := biom.NewGroupAssignment([]string{"treatment", "control", "treatment"}, 3)
	require.NoError(t, err)

	cfg := testConfig("deseq2")
	cfg.Diversity.RarefactionDepth = 100
	service := NewPipelineService(cfg, internal.NewLogger(internal.LogLevelError), nil)

	record, _, diff, err := service.Run(context.Background(), table, groups)
	require.NoError(t, err)

	for _, res := range diff.Results {
		skipped, ok := res.(abundance.SkippedResult)
		require.True(t, ok, "all features should be skipped with a single-sample group")
		assert.Equal(t, abundance.SkipLowN, skipped.Reason)
	}
	assert.Empty(t, diff.Significant)
	assert.Empty(t, record.Significant)
}

func TestRunDifferentialAllMethods(t *testing.T) {
	cfg := testkit.DefaultCommunityConfig()
	cfg.FeatureCount = 20
	cfg.SamplesPerGroup = 5
	table, groups, err := testkit.NewCommunityGenerator(cfg).Generate()
	require.NoError(t, err)

	for _, method := range []string{"deseq2", "ancom", "aldex2"} {
		t.Run(method, func(t *testing.T) {
			service := NewPipelineService(testConfig(method), internal.NewLogger(internal.LogLevelError), nil)
			result, err := service.RunDifferential(context.Background(), table, groups)
			require.NoError(t, err)
			assert.Equal(t, 20, result.TotalFeatures)
			assert.NotEmpty(t, result.Results)
			for _, res := range result.Significant {
				assert.True(t, res.Significant(0.05))
			}
		})
	}
}
