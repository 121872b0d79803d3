package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phstats/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PHSTATS_CONFIDENCE", "PHSTATS_MULTIPLIER", "PHSTATS_YEARS_OF_DATA",
		"PHSTATS_SHEET", "PHSTATS_METADATA", "PHSTATS_LOG_LEVEL", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.95, 0.998}, cfg.Stats.Confidence)
	assert.Equal(t, 100000.0, cfg.Stats.Multiplier)
	assert.Equal(t, 1.0, cfg.Stats.YearsOfData)
	assert.True(t, cfg.Stats.Metadata)
	assert.Equal(t, "Sheet1", cfg.Input.Sheet)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PHSTATS_CONFIDENCE", "0.9, 0.99")
	t.Setenv("PHSTATS_MULTIPLIER", "100")
	t.Setenv("PHSTATS_YEARS_OF_DATA", "3")
	t.Setenv("PHSTATS_SHEET", "Data")
	t.Setenv("PHSTATS_METADATA", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(writeEnv(t, ""))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.99}, cfg.Stats.Confidence)
	assert.Equal(t, 100.0, cfg.Stats.Multiplier)
	assert.Equal(t, 3.0, cfg.Stats.YearsOfData)
	assert.False(t, cfg.Stats.Metadata)
	assert.Equal(t, "Data", cfg.Input.Sheet)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set
	require.NoError(t, os.Unsetenv("PHSTATS_MULTIPLIER"))
	require.NoError(t, os.Unsetenv("PHSTATS_SHEET"))

	cfg, err := Load(writeEnv(t, "PHSTATS_MULTIPLIER=1000\nPHSTATS_SHEET=Rates\n"))
	require.NoError(t, err)
	assert.Equal(t, 1000.0, cfg.Stats.Multiplier)
	assert.Equal(t, "Rates", cfg.Input.Sheet)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"confidence out of range", "PHSTATS_CONFIDENCE", "0.8"},
		{"confidence not a number", "PHSTATS_CONFIDENCE", "high"},
		{"duplicate confidence", "PHSTATS_CONFIDENCE", "0.95,0.95"},
		{"negative multiplier", "PHSTATS_MULTIPLIER", "-5"},
		{"zero years", "PHSTATS_YEARS_OF_DATA", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load(writeEnv(t, ""))
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}

	t.Run("missing env file", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	})
}

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
