package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"benchtrack/internal/config"
	"benchtrack/internal/report"
)

func newListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the entries recorded under a key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			ds, err := newStoreFunc(cfg.DataFile, cfg.RepoURL).Load()
			if err != nil {
				return err
			}

			keys := []string{cfg.Key}
			if all {
				keys = ds.Keys()
				if len(keys) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No benchmarks recorded.")
					return nil
				}
			}
			for i, key := range keys {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := report.WriteEntries(cmd.OutOrStdout(), key, ds.List(key)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "List every key")
	return cmd
}

// entryIndex resolves a list index; negative values count from the end.
func entryIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid entry index %q", arg)
	}
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("entry index %s out of range (%d entries)", arg, n)
	}
	return i, nil
}

func init() {
	rootCmd.AddCommand(newListCmd())
}
