package main

import (
	"github.com/spf13/cobra"

	"benchtrack/internal/config"
)

func newArchiveCmd() *cobra.Command {
	var storeType, dsn string
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Mirror the data file into the SQL archive",
		Long: `Copies every entry that is not archived yet into SQLite or PostgreSQL.
The archive only grows: entries pruned from the data file stay archived.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			if cmd.Flags().Changed("type") {
				cfg.Archive.Type = storeType
			}
			if cmd.Flags().Changed("dsn") {
				cfg.Archive.ConnectionString = dsn
			}

			ds, err := newStoreFunc(cfg.DataFile, cfg.RepoURL).Load()
			if err != nil {
				return err
			}
			return archiveDataset(cfg, ds, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&storeType, "type", "", "Archive backend: sqlite or postgres (default from config)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "SQLite path or PostgreSQL DSN (default from config)")
	return cmd
}

func init() {
	rootCmd.AddCommand(newArchiveCmd())
}
