package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"benchtrack/internal/benchmark"
	"benchtrack/internal/config"
)

// newRunnerFunc allows mocking in tests.
var newRunnerFunc = func(cfg config.Config, cmd *cobra.Command) benchmark.Runner {
	r := benchmark.NewGoRunner()
	r.Pattern = cfg.BenchPattern
	r.Count = cfg.BenchCount
	r.Benchmem = cfg.BenchMem
	if cfg.Verbose {
		r.Output = cmd.ErrOrStderr()
	}
	return r
}

func newRunCmd() *cobra.Command {
	opts := &appendOptions{}
	var pattern string
	cmd := &cobra.Command{
		Use:   "run [packages]",
		Short: "Run go benchmarks and record the results",
		Long: `Executes 'go test -bench' for the specified packages (defaulting to ./...)
and records the parsed results exactly like 'append'. A failing benchmark run
leaves the data file untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			if cfg.Tool != benchmark.ToolGo {
				return fmt.Errorf("run only supports the go tool, configured tool is %s", cfg.Tool)
			}
			if cmd.Flags().Changed("bench") {
				cfg.BenchPattern = pattern
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.BenchTimeout)
			defer cancel()

			fmt.Fprintln(cmd.ErrOrStderr(), "Running benchmarks...")
			output, err := newRunnerFunc(cfg, cmd).Run(ctx, args...)
			if err != nil {
				return err
			}
			return recordResults(cmd.Context(), cmd, opts, output)
		},
	}
	cmd.Flags().StringVar(&pattern, "bench", "", "Benchmark pattern passed to -bench (default from config)")
	addAppendFlags(cmd, opts)
	return cmd
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}
