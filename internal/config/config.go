package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"gobiome/internal/errors"
)

// ConfigFileName is the well-known analysis parameters artifact
const ConfigFileName = "analysis_params.yaml"

// Config represents the complete application configuration.
// It is constructed once per run and never mutated afterwards; stages receive
// it explicitly rather than reading ambient globals.
type Config struct {
	Preprocess   PreprocessConfig
	Diversity    DiversityConfig
	Differential DifferentialConfig
	Database     DatabaseConfig
	Server       ServerConfig
	Paths        PathConfig
	Workers      int
}

// PreprocessConfig holds quality filtering and taxonomy settings
type PreprocessConfig struct {
	QualityThreshold float64
	MinReadLength    int
	MaxReadLength    int
	TrimLeft         int
	TrimRight        int
	TaxonomyDatabase string
}

// DiversityConfig holds rarefaction and diversity analysis settings
type DiversityConfig struct {
	RarefactionDepth      int
	RarefactionSeed       int64
	AlphaMetrics          []string
	BetaMetric            string
	PermanovaPermutations int
	PermanovaTimeout      time.Duration
}

// DifferentialConfig holds differential abundance testing settings
type DifferentialConfig struct {
	Method                string
	SignificanceThreshold float64
	MinPrevalence         float64
	MinAbundance          float64
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port string
}

// PathConfig holds file system paths
type PathConfig struct {
	TableFile string
	FastqDir  string
	ReportDir string
}

// fileParams mirrors the YAML artifact. Pointer fields distinguish a missing
// key from a zero value so absence can be reported as a parse error.
type fileParams struct {
	QualityThreshold      *float64 `yaml:"quality_threshold"`
	MinReadLength         *int     `yaml:"min_read_length"`
	MaxReadLength         *int     `yaml:"max_read_length"`
	TrimLeft              *int     `yaml:"trim_left"`
	TrimRight             *int     `yaml:"trim_right"`
	RarefactionDepth      *int     `yaml:"rarefaction_depth"`
	RarefactionSeed       *int64   `yaml:"rarefaction_seed"`
	AlphaMetrics          []string `yaml:"alpha_metrics"`
	BetaMetric            *string  `yaml:"beta_metric"`
	PermanovaPermutations *int     `yaml:"permanova_permutations"`
	PermanovaTimeout      *string  `yaml:"permanova_timeout"`
	DifferentialMethod    *string  `yaml:"differential_method"`
	SignificanceThreshold *float64 `yaml:"significance_threshold"`
	MinPrevalence         *float64 `yaml:"min_prevalence"`
	MinAbundance          *float64 `yaml:"min_abundance"`
	TaxonomyDatabase      *string  `yaml:"taxonomy_database"`
}

// Load reads the analysis parameters artifact and environment overrides,
// validates everything, and returns an immutable configuration.
func Load() (*Config, error) {
	return LoadFrom(resolveConfigPath())
}

// LoadFrom reads configuration from an explicit artifact path
func LoadFrom(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.ConfigParse(fmt.Sprintf("failed to read %s", path), err)
	}

	var params fileParams
	if err := yaml.Unmarshal(raw, &params); err != nil {
		return nil, errors.ConfigParse(fmt.Sprintf("malformed configuration in %s", path), err)
	}

	cfg, err := buildConfig(&params)
	if err != nil {
		return nil, err
	}

	cfg.Database = DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")}
	cfg.Server = ServerConfig{Port: getEnvOrDefault("PORT", "8080")}
	cfg.Paths = PathConfig{
		TableFile: getEnvOrDefault("TABLE_FILE", ""),
		FastqDir:  getEnvOrDefault("FASTQ_DIR", ""),
		ReportDir: getEnvOrDefault("REPORT_DIR", "."),
	}
	cfg.Workers = getEnvIntOrDefault("WORKERS", runtime.GOMAXPROCS(0))
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return cfg, nil
}

// resolveConfigPath locates the artifact: ANALYSIS_CONFIG wins, then
// CONFIG_DIR, then config/ next to the working directory.
func resolveConfigPath() string {
	if path := os.Getenv("ANALYSIS_CONFIG"); path != "" {
		return path
	}
	dir := getEnvOrDefault("CONFIG_DIR", "config")
	return filepath.Join(dir, ConfigFileName)
}

func buildConfig(params *fileParams) (*Config, error) {
	missing := missingKeys(params)
	if len(missing) > 0 {
		return nil, errors.ConfigParse(fmt.Sprintf("missing required configuration keys: %v", missing), nil)
	}

	cfg := &Config{
		Preprocess: PreprocessConfig{
			QualityThreshold: *params.QualityThreshold,
			MinReadLength:    *params.MinReadLength,
			MaxReadLength:    *params.MaxReadLength,
			TrimLeft:         *params.TrimLeft,
			TrimRight:        *params.TrimRight,
			TaxonomyDatabase: "silva_138",
		},
		Diversity: DiversityConfig{
			RarefactionDepth:      *params.RarefactionDepth,
			AlphaMetrics:          params.AlphaMetrics,
			BetaMetric:            *params.BetaMetric,
			PermanovaPermutations: *params.PermanovaPermutations,
		},
		Differential: DifferentialConfig{
			Method:                *params.DifferentialMethod,
			SignificanceThreshold: *params.SignificanceThreshold,
			MinPrevalence:         *params.MinPrevalence,
			MinAbundance:          *params.MinAbundance,
		},
	}

	if params.RarefactionSeed != nil {
		cfg.Diversity.RarefactionSeed = *params.RarefactionSeed
	}
	if params.TaxonomyDatabase != nil {
		cfg.Preprocess.TaxonomyDatabase = *params.TaxonomyDatabase
	}
	if params.PermanovaTimeout != nil {
		d, err := time.ParseDuration(*params.PermanovaTimeout)
		if err != nil {
			return nil, errors.ConfigParse("permanova_timeout is not a valid duration", err)
		}
		cfg.Diversity.PermanovaTimeout = d
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func missingKeys(params *fileParams) []string {
	var missing []string
	require := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	require("quality_threshold", params.QualityThreshold != nil)
	require("min_read_length", params.MinReadLength != nil)
	require("max_read_length", params.MaxReadLength != nil)
	require("trim_left", params.TrimLeft != nil)
	require("trim_right", params.TrimRight != nil)
	require("rarefaction_depth", params.RarefactionDepth != nil)
	require("alpha_metrics", len(params.AlphaMetrics) > 0)
	require("beta_metric", params.BetaMetric != nil)
	require("permanova_permutations", params.PermanovaPermutations != nil)
	require("differential_method", params.DifferentialMethod != nil)
	require("significance_threshold", params.SignificanceThreshold != nil)
	require("min_prevalence", params.MinPrevalence != nil)
	require("min_abundance", params.MinAbundance != nil)
	return missing
}

func validate(cfg *Config) error {
	if cfg.Preprocess.MinReadLength > cfg.Preprocess.MaxReadLength {
		return errors.ConfigParse("min_read_length exceeds max_read_length", nil)
	}
	if cfg.Preprocess.TrimLeft < 0 || cfg.Preprocess.TrimRight < 0 {
		return errors.ConfigParse("trim lengths must be non-negative", nil)
	}
	if cfg.Diversity.RarefactionDepth <= 0 {
		return errors.ConfigParse("rarefaction_depth must be positive", nil)
	}
	if cfg.Diversity.PermanovaPermutations < 1 {
		return errors.ConfigParse("permanova_permutations must be at least 1", nil)
	}
	if cfg.Differential.SignificanceThreshold <= 0 || cfg.Differential.SignificanceThreshold >= 1 {
		return errors.ConfigParse("significance_threshold must lie in (0, 1)", nil)
	}
	if cfg.Differential.MinPrevalence < 0 || cfg.Differential.MinPrevalence > 1 {
		return errors.ConfigParse("min_prevalence must lie in [0, 1]", nil)
	}
	if cfg.Differential.MinAbundance < 0 || cfg.Differential.MinAbundance > 1 {
		return errors.ConfigParse("min_abundance must lie in [0, 1]", nil)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
