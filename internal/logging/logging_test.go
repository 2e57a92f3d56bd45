package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppendsToRunLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "AutopilotTenantMove.log")

	logger, closeLog, err := New(path, "info")
	require.NoError(t, err)

	logger.Info().Str("device_name", "PC01").Msg("starting tenant move")
	require.NoError(t, closeLog())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "starting tenant move")
	assert.Contains(t, string(got), "PC01")
}

func TestNewAppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	for _, msg := range []string{"first run", "second run"} {
		logger, closeLog, err := New(path, "info")
		require.NoError(t, err)
		logger.Info().Msg(msg)
		require.NoError(t, closeLog())
	}

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "first run")
	assert.Contains(t, string(got), "second run")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New("", "loud")
	require.Error(t, err)
}

func TestNewLevelFiltersDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	logger, closeLog, err := New(path, "info")
	require.NoError(t, err)
	logger.Debug().Msg("hidden detail")
	logger.Info().Msg("visible line")
	require.NoError(t, closeLog())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(got), "hidden detail")
	assert.Contains(t, string(got), "visible line")
}
