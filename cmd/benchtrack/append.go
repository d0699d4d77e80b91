package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newAppendCmd() *cobra.Command {
	opts := &appendOptions{}
	cmd := &cobra.Command{
		Use:   "append [file|-]",
		Short: "Record existing benchmark output as a new entry",
		Long: `Parses benchmark output produced by the configured tool, compares it with
the previous entry of the key and appends it to the data file. The output is
read from the given file, or from stdin when the file is "-" or omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return recordResults(cmd.Context(), cmd, opts, output)
		},
	}
	addAppendFlags(cmd, opts)
	return cmd
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark output: %w", err)
	}
	return data, nil
}

func init() {
	rootCmd.AddCommand(newAppendCmd())
}
