package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"benchtrack/internal/benchmark"
	"benchtrack/internal/config"
	"benchtrack/internal/report"
)

func newCompareCmd() *cobra.Command {
	var (
		markdown  bool
		threshold string
	)
	cmd := &cobra.Command{
		Use:   "compare [from] [to]",
		Short: "Compare two entries of a key",
		Long: `Compares two entries of the key, by default the last two. Indexes are
the ones printed by 'list'; negative indexes count from the end.`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			if cmd.Flags().Changed("threshold") {
				t, err := benchmark.ParseThreshold(threshold)
				if err != nil {
					return fmt.Errorf("--threshold: %w", err)
				}
				cfg.AlertThreshold = t
			}

			ds, err := newStoreFunc(cfg.DataFile, cfg.RepoURL).Load()
			if err != nil {
				return err
			}
			entries := ds.List(cfg.Key)
			if len(entries) < 2 {
				return fmt.Errorf("need at least two entries under %s to compare, found %d", cfg.Key, len(entries))
			}

			from, to := len(entries)-2, len(entries)-1
			if len(args) >= 1 {
				if from, err = entryIndex(args[0], len(entries)); err != nil {
					return err
				}
			}
			if len(args) == 2 {
				if to, err = entryIndex(args[1], len(entries)); err != nil {
					return err
				}
			}

			prev, curr := entries[from], entries[to]
			comps := benchmark.Compare(prev, curr, cfg.Tool)
			if markdown {
				fmt.Fprint(cmd.OutOrStdout(), report.RenderMarkdown(report.CompareMarkdown(cfg.Key, curr, prev, comps)))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", cfg.Key, prev.Commit.ShortID(), curr.Commit.ShortID())
			return report.WriteTable(cmd.OutOrStdout(), comps, cfg.AlertThreshold)
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the comparison as markdown")
	cmd.Flags().StringVar(&threshold, "threshold", "", "Alert threshold override, e.g. 150%")
	return cmd
}

func init() {
	rootCmd.AddCommand(newCompareCmd())
}
