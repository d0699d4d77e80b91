package benchmark

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
)

// Runner executes benchmarks and returns their raw output.
type Runner interface {
	Run(ctx context.Context, packages ...string) ([]byte, error)
}

// execCommandContext allows mocking in tests.
var execCommandContext = exec.CommandContext

// GoRunner implements Runner using the 'go test' command.
type GoRunner struct {
	Pattern  string // -bench pattern, "." when empty
	Count    int
	Benchmem bool
	Dir      string
	// Output receives a live copy of the benchmark output when set.
	Output io.Writer
}

func NewGoRunner() *GoRunner {
	return &GoRunner{Pattern: ".", Benchmem: true}
}

// Args returns the go command arguments for the given packages.
func (r *GoRunner) Args(packages ...string) []string {
	pattern := r.Pattern
	if pattern == "" {
		pattern = "."
	}
	args := []string{"test", "-run=^$", "-bench=" + pattern}
	if r.Benchmem {
		args = append(args, "-benchmem")
	}
	if r.Count > 0 {
		args = append(args, "-count="+strconv.Itoa(r.Count))
	}
	if len(packages) == 0 {
		packages = []string{"./..."}
	}
	return append(args, packages...)
}

func (r *GoRunner) Run(ctx context.Context, packages ...string) ([]byte, error) {
	args := r.Args(packages...)
	cmd := execCommandContext(ctx, "go", args...)
	cmd.Dir = r.Dir

	var out bytes.Buffer
	if r.Output != nil {
		cmd.Stdout = io.MultiWriter(&out, r.Output)
	} else {
		cmd.Stdout = &out
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Debug("running benchmarks", "args", args, "dir", r.Dir)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("benchmark execution failed: %w\nOutput:\n%s%s", err, out.String(), stderr.String())
	}
	return out.Bytes(), nil
}
