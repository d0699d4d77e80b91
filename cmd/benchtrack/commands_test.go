package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"benchtrack/internal/benchdata"
	"benchtrack/internal/benchmark"
	"benchtrack/internal/config"
	"benchtrack/internal/db"
	"benchtrack/internal/web"
)

// seed records one entry per value set.
func seed(t *testing.T, runs ...[]float64) {
	t.Helper()
	for i, values := range runs {
		id := strings.Repeat(string(rune('a'+i)), 10)
		output, err := executeCommandWithInput(rootCmd, goOutput(values...), "append", "--commit-id", id, "--commit-message", "change "+id[:1])
		require.NoError(t, err, output)
	}
}

type mockRunner struct {
	output   []byte
	err      error
	packages []string
}

func (m *mockRunner) Run(ctx context.Context, packages ...string) ([]byte, error) {
	m.packages = packages
	return m.output, m.err
}

func stubRunner(t *testing.T, r *mockRunner) *config.Config {
	t.Helper()
	var seen config.Config
	old := newRunnerFunc
	newRunnerFunc = func(cfg config.Config, cmd *cobra.Command) benchmark.Runner {
		seen = cfg
		return r
	}
	t.Cleanup(func() { newRunnerFunc = old })
	return &seen
}

func TestRunCmd(t *testing.T) {
	dataFile := setupWorkspace(t)
	r := &mockRunner{output: []byte(goOutput(42))}
	seen := stubRunner(t, r)

	output, err := executeCommand(rootCmd, "run", "./pkg/...", "--bench", "Demo", "--commit-id", "abc")
	require.NoError(t, err, output)
	assert.Equal(t, []string{"./pkg/..."}, r.packages)
	assert.Equal(t, "Demo", seen.BenchPattern)
	assert.Equal(t, 1, loadData(t, dataFile).Len("Benchmark"))

	t.Run("Failing Run Writes Nothing", func(t *testing.T) {
		r.err = errors.New("benchmark execution failed: exit status 1")
		_, err := executeCommand(rootCmd, "run", "--commit-id", "def")
		require.Error(t, err)
		assert.Equal(t, 1, loadData(t, dataFile).Len("Benchmark"))
	})

	t.Run("Custom Tool Rejected", func(t *testing.T) {
		_, err := executeCommand(rootCmd, "run", "--tool", "customSmallerIsBetter", "--commit-id", "def")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only supports the go tool")
	})
}

func TestCompareCmd(t *testing.T) {
	setupWorkspace(t)

	_, err := executeCommand(rootCmd, "compare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "need at least two entries")

	seed(t, []float64{100, 40}, []float64{150, 200}, []float64{90, 10})

	output, err := executeCommand(rootCmd, "compare")
	require.NoError(t, err)
	assert.Contains(t, output, "Benchmark: bbbbbbb -> ccccccc")
	assert.Regexp(t, `IMPROVED\s+BenchmarkDemo1\s+10 ns/op`, output)

	output, err = executeCommand(rootCmd, "compare", "--threshold", "150%", "--", "0", "-2")
	require.NoError(t, err)
	assert.Contains(t, output, "Benchmark: aaaaaaa -> bbbbbbb")
	assert.Regexp(t, `ALERT\s+BenchmarkDemo1\s+200 ns/op.*40 ns/op.*5\.00`, output)
	assert.Regexp(t, `OK\s+BenchmarkDemo0`, output)

	output, err = executeCommand(rootCmd, "compare", "--markdown")
	require.NoError(t, err)
	assert.Contains(t, output, "BenchmarkDemo0")

	_, err = executeCommand(rootCmd, "compare", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestListCmd(t *testing.T) {
	setupWorkspace(t)

	output, err := executeCommand(rootCmd, "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, output, "No benchmarks recorded.")

	seed(t, []float64{1}, []float64{2})

	output, err = executeCommand(rootCmd, "list")
	require.NoError(t, err)
	assert.Contains(t, output, "aaaaaaa")
	assert.Contains(t, output, "bbbbbbb")
	assert.Contains(t, output, "change b")

	output, err = executeCommand(rootCmd, "list", "--key", "Missing")
	require.NoError(t, err)
	assert.Contains(t, output, "No entries recorded.")
}

func TestShowCmd(t *testing.T) {
	setupWorkspace(t)

	_, err := executeCommand(rootCmd, "show")
	require.Error(t, err)

	seed(t, []float64{1, 2}, []float64{3, 4})

	output, err := executeCommand(rootCmd, "show")
	require.NoError(t, err)
	assert.Contains(t, output, "bbbbbbbbbb")
	assert.Regexp(t, `BenchmarkDemo1\s+4\s+ns/op`, output)

	output, err = executeCommand(rootCmd, "show", "0", "--json")
	require.NoError(t, err)
	var entry benchdata.Entry
	require.NoError(t, json.Unmarshal([]byte(output), &entry))
	assert.Equal(t, "aaaaaaaaaa", entry.Commit.ID)
	assert.Equal(t, 2.0, entry.Benches[1].Value)

	output, err = executeCommand(rootCmd, "show", "--markdown", "--", "-1")
	require.NoError(t, err)
	assert.Contains(t, output, "BenchmarkDemo0")

	_, err = executeCommand(rootCmd, "show", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid entry index")
}

func TestValidateCmd(t *testing.T) {
	dataFile := setupWorkspace(t)

	seed(t, []float64{1}, []float64{2})
	output, err := executeCommand(rootCmd, "validate")
	require.NoError(t, err)
	assert.Contains(t, output, "OK: dev/bench/data.js (1 keys, 2 entries)")

	t.Run("Out Of Order", func(t *testing.T) {
		ds := loadData(t, dataFile)
		ds.Entries["Benchmark"][0].Date = ds.Entries["Benchmark"][1].Date + 1
		data, err := benchdata.Marshal(ds)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(dataFile, data, 0644))

		_, err = executeCommand(rootCmd, "validate")
		require.Error(t, err)
		assert.ErrorIs(t, err, benchdata.ErrOutOfOrder)
	})

	t.Run("Malformed", func(t *testing.T) {
		require.NoError(t, os.WriteFile(dataFile, []byte("window.BENCHMARK_DATA = {"), 0644))

		_, err := executeCommand(rootCmd, "validate")
		require.Error(t, err)
		assert.ErrorIs(t, err, benchdata.ErrMalformed)
	})
}

func TestPruneCmd(t *testing.T) {
	dataFile := setupWorkspace(t)

	_, err := executeCommand(rootCmd, "prune")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--max-items must be positive")

	seed(t, []float64{1}, []float64{2}, []float64{3})

	output, err := executeCommand(rootCmd, "prune", "--max-items", "1")
	require.NoError(t, err)
	assert.Contains(t, output, "Removed 2 entries.")

	entries := loadData(t, dataFile).List("Benchmark")
	require.Len(t, entries, 1)
	assert.Equal(t, "cccccccccc", entries[0].Commit.ID)

	output, err = executeCommand(rootCmd, "prune", "--max-items", "1", "--all")
	require.NoError(t, err)
	assert.Contains(t, output, "Nothing to prune.")
}

func TestArchiveCmd(t *testing.T) {
	setupWorkspace(t)
	seed(t, []float64{1}, []float64{2})

	dsn := filepath.Join(t.TempDir(), "bench.db")
	output, err := executeCommand(rootCmd, "archive", "--dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, output, "Archived 2 new entries.")

	output, err = executeCommand(rootCmd, "archive", "--dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, output, "Archived 0 new entries.")

	store, err := db.NewSQLiteStore(dsn)
	require.NoError(t, err)
	defer store.Close()
	n, err := store.Count("Benchmark")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = executeCommand(rootCmd, "archive", "--type", "postgres", "--dsn", "")
	require.Error(t, err)
}

func TestServeCmd(t *testing.T) {
	setupWorkspace(t)

	var gotAddr string
	old := serveFunc
	serveFunc = func(ctx context.Context, srv *web.Server, addr string) error {
		gotAddr = addr
		require.NotNil(t, srv.Handler())
		return nil
	}
	defer func() { serveFunc = old }()

	_, err := executeCommand(rootCmd, "serve", "--port", "9191")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9191", gotAddr)

	_, err = executeCommand(rootCmd, "serve")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", gotAddr)

	_, err = executeCommand(rootCmd, "serve", "--port", "70000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serve.port must be between 1 and 65535")
}

func TestInitCmd(t *testing.T) {
	setupWorkspace(t)

	old := askOneFunc
	askOneFunc = func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
		switch prompt := p.(type) {
		case *survey.Input:
			v := response.(*string)
			switch {
			case strings.HasPrefix(prompt.Message, "Benchmark key"):
				*v = "Reconcile"
			case strings.HasPrefix(prompt.Message, "Slack"):
				*v = "https://hooks.slack.com/services/T/B/X"
			default:
				*v = prompt.Default
			}
		case *survey.Select:
			*response.(*string) = string(benchmark.ToolCustomSmallerIsBetter)
		case *survey.Confirm:
			*response.(*bool) = true
		}
		return nil
	}
	defer func() { askOneFunc = old }()

	// a file outside the search path keeps later commands on the defaults
	output, err := executeCommand(rootCmd, "init", "-o", "custom.yaml")
	require.NoError(t, err, output)
	assert.Contains(t, output, "Created configuration file: custom.yaml")

	v := viper.New()
	v.SetConfigFile("custom.yaml")
	require.NoError(t, v.ReadInConfig())
	assert.Equal(t, "dev/bench/data.js", v.GetString("data_file"))
	assert.Equal(t, "Reconcile", v.GetString("key"))
	assert.Equal(t, "customSmallerIsBetter", v.GetString("tool"))
	assert.Equal(t, "200%", v.GetString("alert_threshold"))
	assert.True(t, v.GetBool("fail_on_alert"))
	assert.Equal(t, "https://hooks.slack.com/services/T/B/X", v.GetString("notifications.slack.webhook_url"))

	_, err = executeCommand(rootCmd, "init", "-o", "custom.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	output, err = executeCommand(rootCmd, "init", "-o", "custom.yaml", "--force")
	require.NoError(t, err, output)
}

func TestInitCmd_Interrupted(t *testing.T) {
	setupWorkspace(t)

	old := askOneFunc
	askOneFunc = func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
		return errors.New("interrupt")
	}
	defer func() { askOneFunc = old }()

	_, err := executeCommand(rootCmd, "init", "-o", "other.yaml")
	require.Error(t, err)
	assert.NoFileExists(t, "other.yaml")
}

func TestVersionCmd(t *testing.T) {
	output, err := executeCommand(rootCmd, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "benchtrack version "+version)
}

func TestInvalidConfig(t *testing.T) {
	setupWorkspace(t)

	_, err := executeCommand(rootCmd, "list", "--tool", "pytest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}
