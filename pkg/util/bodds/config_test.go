package bodds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultBoddsConfig()
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, 5, cfg.FormWindow)
	assert.Equal(t, 3, cfg.StarPlayerCount)
	assert.Equal(t, 10, cfg.SeasonBoundaryMonth)
	assert.InDelta(t, 0.2, cfg.TestFraction, 1e-12)
	assert.InDelta(t, 0.1, cfg.ValidationFraction, 1e-12)
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cases := []func(*BoddsConfig){
		func(c *BoddsConfig) { c.FormWindow = 0 },
		func(c *BoddsConfig) { c.StarPlayerCount = -1 },
		func(c *BoddsConfig) { c.SeasonBoundaryMonth = 13 },
		func(c *BoddsConfig) { c.TestFraction = 0.0 },
		func(c *BoddsConfig) { c.ValidationFraction = 1.5 },
		func(c *BoddsConfig) { c.TestFraction = 0.6; c.ValidationFraction = 0.5 },
		func(c *BoddsConfig) { c.LogisticIterations = 0 },
		func(c *BoddsConfig) { c.BoostRounds = 0 },
		func(c *BoddsConfig) { c.BoostMaxDepth = 0 },
		func(c *BoddsConfig) { c.BoostLearningRate = 0.0 },
	}

	for i, mutate := range cases {
		cfg := DefaultBoddsConfig()
		mutate(cfg)
		assert.Error(t, ValidateConfig(cfg), "case %d", i)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	original := Config
	defer UpdateConfig(original)

	path := filepath.Join(t.TempDir(), "bodds.yaml")
	body := "formWindow: 8\nstarPlayerCount: 2\ndataDir: /tmp/exports\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.FormWindow)
	assert.Equal(t, 2, cfg.StarPlayerCount)
	assert.Equal(t, "/tmp/exports", cfg.DataDir)
	// Untouched keys keep their defaults.
	assert.InDelta(t, 0.2, cfg.TestFraction, 1e-12)

	// The loaded config becomes the global one.
	assert.Equal(t, 8, GetFormWindow())
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	original := Config
	defer UpdateConfig(original)

	path := filepath.Join(t.TempDir(), "bodds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("formWindow: 0\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
