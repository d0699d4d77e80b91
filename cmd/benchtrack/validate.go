package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"benchtrack/internal/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the data file is well formed",
		Long: `Decodes the data file and checks every entry: benches present, values
non-negative and dates non-decreasing within each key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			ds, err := newStoreFunc(cfg.DataFile, cfg.RepoURL).Load()
			if err != nil {
				return err
			}
			if err := ds.Validate(); err != nil {
				return fmt.Errorf("%s is invalid:\n%w", cfg.DataFile, err)
			}

			total := 0
			for _, key := range ds.Keys() {
				total += ds.Len(key)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %s (%d keys, %d entries)\n", cfg.DataFile, len(ds.Keys()), total)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newValidateCmd())
}
