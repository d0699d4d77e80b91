package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"benchtrack/internal/config"
	"benchtrack/internal/telemetry"
)

var exit = os.Exit
var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "benchtrack",
	Short: "Track benchmark results over time in a data.js history file",
	Long: `benchtrack records benchmark results, one entry per commit, into a
window.BENCHMARK_DATA history file that static pages can chart. It compares
every new run to the previous one and raises alerts on regressions.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./benchtrack.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("data-file", "f", "", "Path of the data.js history file")
	rootCmd.PersistentFlags().StringP("key", "k", "", "Name of the benchmark set inside the data file")
	rootCmd.PersistentFlags().String("tool", "", "Output format of the benchmark tool (go, customSmallerIsBetter, customBiggerIsBetter)")
	rootCmd.PersistentFlags().String("repo-url", "", "Browsable repository URL (defaults to the git remote)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("data_file", rootCmd.PersistentFlags().Lookup("data-file"))
	viper.BindPFlag("key", rootCmd.PersistentFlags().Lookup("key"))
	viper.BindPFlag("tool", rootCmd.PersistentFlags().Lookup("tool"))
	viper.BindPFlag("repo_url", rootCmd.PersistentFlags().Lookup("repo-url"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig(cmd *cobra.Command, args []string) error {
	if err := config.Load(cfgFile); err != nil {
		return err
	}

	// Validate configuration values
	if err := config.ValidateConfig(); err != nil {
		return err
	}

	telemetry.InitLogger(viper.GetBool("verbose"), viper.GetString("log_file"))
	return nil
}
