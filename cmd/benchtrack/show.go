package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"benchtrack/internal/config"
	"benchtrack/internal/report"
)

func newShowCmd() *cobra.Command {
	var (
		markdown bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "show [index]",
		Short: "Show the benches of one entry (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			ds, err := newStoreFunc(cfg.DataFile, cfg.RepoURL).Load()
			if err != nil {
				return err
			}
			entries := ds.List(cfg.Key)
			if len(entries) == 0 {
				return fmt.Errorf("no entries under %s", cfg.Key)
			}

			idx := len(entries) - 1
			if len(args) == 1 {
				if idx, err = entryIndex(args[0], len(entries)); err != nil {
					return err
				}
			}
			entry := entries[idx]

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(entry)
			case markdown:
				fmt.Fprint(out, report.RenderMarkdown(report.EntryMarkdown(cfg.Key, entry)))
				return nil
			default:
				return report.WriteBenches(out, entry)
			}
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the entry as markdown")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the entry as JSON")
	cmd.MarkFlagsMutuallyExclusive("markdown", "json")
	return cmd
}

func init() {
	rootCmd.AddCommand(newShowCmd())
}
