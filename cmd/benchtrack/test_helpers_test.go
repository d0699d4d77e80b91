package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"benchtrack/internal/benchdata"
)

// executeCommand executes a cobra command and returns its output.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	return executeCommandWithInput(root, "", args...)
}

// executeCommandWithInput executes a cobra command with input as stdin.
func executeCommandWithInput(root *cobra.Command, input string, args ...string) (string, error) {
	resetFlags(root)
	// Mock exit
	oldExit := exit
	exit = func(code int) {
		if code != 0 {
			panic(fmt.Sprintf("exit-%d", code))
		}
	}
	defer func() { exit = oldExit }()
	defer func() {
		if r := recover(); r != nil {
			if s, ok := r.(string); ok && strings.HasPrefix(s, "exit-") {
				// This is an expected exit, don't re-panic
				return
			}
			panic(r) // Re-panic actual panics
		}
	}()
	root.SetArgs(args)
	b := new(bytes.Buffer)
	root.SetOut(b)
	root.SetErr(b)
	root.SetIn(bytes.NewBufferString(input))
	err := root.Execute()
	return b.String(), err
}

// resetFlags resets all flags to their default values.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// setupWorkspace moves the test into an empty directory and pins the clock.
// It returns the path of the data file used by the commands.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	for _, env := range []string{"SLACK_WEBHOOK_URL", "SLACK_BOT_USER_TOKEN", "DISCORD_WEBHOOK_URL", "GITHUB_ACTOR"} {
		t.Setenv(env, "")
	}

	clock := time.UnixMilli(1651082410611)
	oldNow := nowFunc
	nowFunc = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	t.Cleanup(func() { nowFunc = oldNow })

	return filepath.Join(dir, "dev", "bench", "data.js")
}

func goOutput(values ...float64) string {
	var b strings.Builder
	b.WriteString("goos: linux\ngoarch: amd64\npkg: example.com/demo\n")
	for i, v := range values {
		fmt.Fprintf(&b, "BenchmarkDemo%d-8\t1000000\t%v ns/op\t16 B/op\t1 allocs/op\n", i, v)
	}
	b.WriteString("PASS\nok  \texample.com/demo\t1.234s\n")
	return b.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(name, []byte(content), 0644))
	return name
}

func loadData(t *testing.T, path string) *benchdata.Dataset {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	ds, err := benchdata.Unmarshal(data)
	require.NoError(t, err)
	return ds
}
