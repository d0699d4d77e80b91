package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"benchtrack/internal/benchmark"
)

func TestLoad(t *testing.T) {
	defer viper.Reset()

	t.Run("Defaults Without Config File", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())

		require.NoError(t, Load(""))

		cfg := Get()
		assert.Equal(t, "dev/bench/data.js", cfg.DataFile)
		assert.Equal(t, "Benchmark", cfg.Key)
		assert.Equal(t, benchmark.ToolGo, cfg.Tool)
		assert.Equal(t, benchmark.DefaultThreshold, cfg.AlertThreshold)
		assert.Equal(t, cfg.AlertThreshold, cfg.FailThreshold)
		assert.Equal(t, 30*time.Minute, cfg.BenchTimeout)
		assert.Equal(t, "sqlite", cfg.Archive.Type)
		assert.Equal(t, 8080, cfg.ServePort)
		assert.NoError(t, ValidateConfig())
	})

	t.Run("Load From Env", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())
		t.Setenv("BENCHTRACK_KEY", "Reconcile")
		t.Setenv("BENCHTRACK_ARCHIVE_DSN", "/tmp/archive.db")
		t.Setenv("GITHUB_ACTOR", "octocat")

		require.NoError(t, Load(""))

		cfg := Get()
		assert.Equal(t, "Reconcile", cfg.Key)
		assert.Equal(t, "/tmp/archive.db", cfg.Archive.ConnectionString)
		assert.Equal(t, "octocat", cfg.Username)
	})

	t.Run("Load From File", func(t *testing.T) {
		viper.Reset()
		dir := t.TempDir()
		t.Chdir(dir)
		content := []byte(`
data_file: gh-pages/dev/bench/data.js
tool: customBiggerIsBetter
alert_threshold: 150%
fail_threshold: "3"
fail_on_alert: true
bench:
  timeout: 600
`)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "benchtrack.yaml"), content, 0644))

		require.NoError(t, Load(""))

		cfg := Get()
		assert.Equal(t, "gh-pages/dev/bench/data.js", cfg.DataFile)
		assert.Equal(t, benchmark.ToolCustomBiggerIsBetter, cfg.Tool)
		assert.InDelta(t, 1.5, float64(cfg.AlertThreshold), 1e-9)
		assert.InDelta(t, 3.0, float64(cfg.FailThreshold), 1e-9)
		assert.True(t, cfg.FailOnAlert)
		assert.Equal(t, 10*time.Minute, cfg.BenchTimeout)
	})

	t.Run("Explicit Missing File", func(t *testing.T) {
		viper.Reset()
		err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
