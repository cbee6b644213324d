package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigureNoopWhenDebugDisabled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Configure(dir, false, nil, "info"))

	logsDir = ""
	l := Get(CategoryStore)
	l.Info("should not panic or write anything")

	_, err := os.Stat(filepath.Join(dir, ".patternkeep", "logs"))
	require.True(t, os.IsNotExist(err))
}

func TestConfigureWritesLogFileWhenDebugEnabled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Configure(dir, true, nil, "debug"))
	defer CloseAll()

	Get(CategoryStore).Info("hello %s", "world")

	entries, err := os.ReadDir(filepath.Join(dir, ".patternkeep", "logs"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)
}

func TestCategoryDisabledSuppressesOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Configure(dir, true, map[string]bool{string(CategoryStore): false}, "debug"))
	defer CloseAll()

	require.False(t, isCategoryEnabled(CategoryStore))
	require.True(t, isCategoryEnabled(CategoryScoring))
}

func TestTimerStopReturnsElapsed(t *testing.T) {
	timer := StartTimer(CategoryStore, "unit-test-op")
	elapsed := timer.Stop()
	require.GreaterOrEqual(t, elapsed.Nanoseconds(), int64(0))
}
