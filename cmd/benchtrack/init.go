package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"benchtrack/internal/benchmark"
	"benchtrack/internal/config"
)

// askOneFunc allows mocking in tests.
var askOneFunc = survey.AskOne

func newInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a benchtrack.yaml interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", output)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			cfg := config.Get()
			answers := struct {
				DataFile    string
				Key         string
				Tool        string
				Threshold   string
				FailOnAlert bool
				Webhook     string
			}{}

			prompts := []struct {
				prompt   survey.Prompt
				response any
				opts     []survey.AskOpt
			}{
				{&survey.Input{Message: "Data file:", Default: cfg.DataFile}, &answers.DataFile, []survey.AskOpt{survey.WithValidator(survey.Required)}},
				{&survey.Input{Message: "Benchmark key:", Default: cfg.Key}, &answers.Key, []survey.AskOpt{survey.WithValidator(survey.Required)}},
				{&survey.Select{
					Message: "Benchmark tool:",
					Options: []string{string(benchmark.ToolGo), string(benchmark.ToolCustomSmallerIsBetter), string(benchmark.ToolCustomBiggerIsBetter)},
					Default: cfg.Tool.String(),
				}, &answers.Tool, nil},
				{&survey.Input{Message: "Alert threshold:", Default: cfg.AlertThreshold.String()}, &answers.Threshold, []survey.AskOpt{survey.WithValidator(validThreshold)}},
				{&survey.Confirm{Message: "Fail when a benchmark regresses beyond the threshold?", Default: cfg.FailOnAlert}, &answers.FailOnAlert, nil},
				{&survey.Input{Message: "Slack webhook URL (empty to skip):"}, &answers.Webhook, nil},
			}
			for _, p := range prompts {
				if err := askOneFunc(p.prompt, p.response, p.opts...); err != nil {
					return err
				}
			}

			v := viper.New()
			v.Set("data_file", answers.DataFile)
			v.Set("key", answers.Key)
			v.Set("tool", answers.Tool)
			v.Set("alert_threshold", answers.Threshold)
			v.Set("fail_on_alert", answers.FailOnAlert)
			if answers.Webhook != "" {
				v.Set("notifications.slack.enabled", true)
				v.Set("notifications.slack.webhook_url", answers.Webhook)
			}
			if err := v.WriteConfigAs(output); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", config.DefaultConfigName+".yaml", "Config file to write")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func validThreshold(ans interface{}) error {
	s, ok := ans.(string)
	if !ok {
		return errors.New("threshold must be text")
	}
	_, err := benchmark.ParseThreshold(s)
	return err
}

func init() {
	rootCmd.AddCommand(newInitCmd())
}
