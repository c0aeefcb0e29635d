package bodds

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BoddsConfig contains all configurable parameters that influence the pipeline
// This centralizes all magic numbers and constants for easy adjustment
type BoddsConfig struct {
	// Filesystem locations
	DataDir      string `yaml:"dataDir"`      // Directory containing the NBA_*.csv source files
	DbPath       string `yaml:"dbPath"`       // Location of the bodds sqlite database
	ArtifactsDir string `yaml:"artifactsDir"` // Where model artifacts and prediction exports are written

	// === FORM FEATURE PARAMETERS ===

	FormWindow      int `yaml:"formWindow"`      // Rolling window of prior games used for form averages (default: 5)
	StarPlayerCount int `yaml:"starPlayerCount"` // Players aggregated into the star feature block (default: 3)

	// Season boundary: games in this month or later belong to the season
	// starting that calendar year, earlier games to the previous one
	SeasonBoundaryMonth int `yaml:"seasonBoundaryMonth"` // default: 10 (October)

	// === DATASET SPLIT PARAMETERS ===

	TestFraction       float64 `yaml:"testFraction"`       // Newest fraction of rows held out for testing (default: 0.2)
	ValidationFraction float64 `yaml:"validationFraction"` // Fraction before the test block used for selection (default: 0.1)

	// === MODEL PARAMETERS ===

	Seed int64 `yaml:"seed"` // Seed recorded for run reproducibility (default: 42)

	// Logistic regression (gradient descent on log-loss)
	LogisticIterations   int     `yaml:"logisticIterations"`   // default: 2000
	LogisticLearningRate float64 `yaml:"logisticLearningRate"` // default: 0.1
	LogisticL2           float64 `yaml:"logisticL2"`           // ridge penalty (default: 1e-4)

	// Gradient boosted trees on log-odds
	BoostRounds       int     `yaml:"boostRounds"`       // number of trees (default: 100)
	BoostLearningRate float64 `yaml:"boostLearningRate"` // shrinkage (default: 0.1)
	BoostMaxDepth     int     `yaml:"boostMaxDepth"`     // tree depth limit (default: 3)
	BoostMinLeaf      int     `yaml:"boostMinLeaf"`      // minimum samples per leaf (default: 5)

	// === METRIC PARAMETERS ===

	LogLossEpsilon float64 `yaml:"logLossEpsilon"` // probability clamp before taking logs (default: 1e-15)
}

// DefaultBoddsConfig returns the default configuration with all standard values
func DefaultBoddsConfig() *BoddsConfig {
	return &BoddsConfig{
		DataDir:      "data",
		DbPath:       "bodds.db",
		ArtifactsDir: "artifacts",

		FormWindow:          5,
		StarPlayerCount:     3,
		SeasonBoundaryMonth: 10,

		TestFraction:       0.2,
		ValidationFraction: 0.1,

		Seed: 42,

		LogisticIterations:   2000,
		LogisticLearningRate: 0.1,
		LogisticL2:           1e-4,

		BoostRounds:       100,
		BoostLearningRate: 0.1,
		BoostMaxDepth:     3,
		BoostMinLeaf:      5,

		LogLossEpsilon: 1e-15,
	}
}

// Global configuration instance
var Config *BoddsConfig

func init() {
	Config = DefaultBoddsConfig()
}

// UpdateConfig allows updating the global configuration
func UpdateConfig(newConfig *BoddsConfig) {
	Config = newConfig
}

// LoadConfig overlays a YAML file onto the default configuration and
// installs the result as the global Config
func LoadConfig(path string) (*BoddsConfig, error) {
	cfg := DefaultBoddsConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	Config = cfg
	return cfg, nil
}

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *BoddsConfig) error {
	if config.FormWindow < 1 {
		return fmt.Errorf("FormWindow must be at least 1, got: %d", config.FormWindow)
	}

	if config.StarPlayerCount < 1 {
		return fmt.Errorf("StarPlayerCount must be at least 1, got: %d", config.StarPlayerCount)
	}

	if config.SeasonBoundaryMonth < 1 || config.SeasonBoundaryMonth > 12 {
		return fmt.Errorf("SeasonBoundaryMonth must be a calendar month, got: %d", config.SeasonBoundaryMonth)
	}

	if config.TestFraction <= 0.0 || config.TestFraction >= 1.0 {
		return fmt.Errorf("TestFraction must be between 0.0 and 1.0 exclusive, got: %f", config.TestFraction)
	}

	if config.ValidationFraction <= 0.0 || config.ValidationFraction >= 1.0 {
		return fmt.Errorf("ValidationFraction must be between 0.0 and 1.0 exclusive, got: %f", config.ValidationFraction)
	}

	if config.TestFraction+config.ValidationFraction >= 1.0 {
		return fmt.Errorf("TestFraction + ValidationFraction must leave room for training data, got: %f",
			config.TestFraction+config.ValidationFraction)
	}

	if config.LogisticIterations < 1 {
		return fmt.Errorf("LogisticIterations must be positive, got: %d", config.LogisticIterations)
	}

	if config.BoostRounds < 1 {
		return fmt.Errorf("BoostRounds must be positive, got: %d", config.BoostRounds)
	}

	if config.BoostMaxDepth < 1 {
		return fmt.Errorf("BoostMaxDepth must be positive, got: %d", config.BoostMaxDepth)
	}

	if config.BoostLearningRate <= 0.0 || config.BoostLearningRate > 1.0 {
		return fmt.Errorf("BoostLearningRate must be in (0.0, 1.0], got: %f", config.BoostLearningRate)
	}

	return nil
}

// === HELPER FUNCTIONS FOR EASY ACCESS ===

// GetFormWindow returns the rolling window size
func GetFormWindow() int {
	return Config.FormWindow
}

// GetStarPlayerCount returns the number of players in the star aggregate
func GetStarPlayerCount() int {
	return Config.StarPlayerCount
}

// GetSeasonBoundaryMonth returns the month that starts a new season
func GetSeasonBoundaryMonth() int {
	return Config.SeasonBoundaryMonth
}
