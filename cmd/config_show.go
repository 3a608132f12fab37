package cmd

import (
	"fmt"
	"io"
	"strings"

	"jiralog/config"
	"jiralog/internal/formatter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. The API token
is masked.`,
	Example: `
  # Show active configuration
  jiralog config show
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			return fmt.Errorf("no configuration file found")
		}

		cfg, err := config.LoadAndValidate()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		printConfig(cmd.OutOrStdout(), configPath, cfg)
		return nil
	},
}

func printConfig(out io.Writer, configPath string, cfg *config.Config) {
	fmt.Fprintln(out, "Config file loaded from:", configPath)
	fmt.Fprintln(out, formatter.Header("Configuration"))

	rows := [][]string{
		{config.KeyJiraURL, cfg.Jira.URL},
		{config.KeyJiraUsername, cfg.Jira.Username},
		{config.KeyJiraAPIToken, maskSecret(cfg.Jira.APIToken)},
		{config.KeyJiraAPIVersion, cfg.Jira.APIVersion},
		{config.KeyJiraXSRFBypass, fmt.Sprintf("%t", cfg.Jira.XSRFBypass)},
		{config.KeyJiraTimeout, cfg.Jira.Timeout.String()},
		{config.KeyTrackingDefaultComment, cfg.Tracking.DefaultComment},
		{config.KeyTrackingReminder, fmt.Sprintf("%d", cfg.Tracking.ReminderMinutes)},
		{config.KeyHistoryDB, cfg.History.DB},
		{config.KeyLogLevel, cfg.Log.Level},
		{config.KeyLogFormat, cfg.Log.Format},
	}
	fmt.Fprint(out, formatter.RenderTable([]string{"KEY", "VALUE"}, rows))
}

// maskSecret keeps the last four characters of secrets longer than eight.
func maskSecret(value string) string {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return "(not set)"
	case len(value) <= 8:
		return strings.Repeat("*", len(value))
	default:
		return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
	}
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
