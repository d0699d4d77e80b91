package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"benchtrack/internal/config"
)

func newPruneCmd() *cobra.Command {
	var (
		maxItems int
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop the oldest entries beyond a retention limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			if !cmd.Flags().Changed("max-items") {
				maxItems = cfg.MaxItems
			}
			if maxItems <= 0 {
				return fmt.Errorf("--max-items must be positive (or set max_items in the config)")
			}

			store := newStoreFunc(cfg.DataFile, cfg.RepoURL)
			ds, err := store.Load()
			if err != nil {
				return err
			}

			keys := []string{cfg.Key}
			if all {
				keys = ds.Keys()
			}
			removed := 0
			for _, key := range keys {
				removed += ds.Prune(key, maxItems)
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune.")
				return nil
			}
			if err := store.Save(ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries.\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "Entries to keep per key (default from config)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Prune every key")
	return cmd
}

func init() {
	rootCmd.AddCommand(newPruneCmd())
}
