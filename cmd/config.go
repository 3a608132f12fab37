package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage jiralog configuration file values.",
	Long: `Create, edit, display, and delete the jiralog configuration file.

The configuration stores the Jira connection and tracking preferences:
- jira.url / jira.username / jira.api_token
- jira.api_version (2 or 3) / jira.xsrf_bypass / jira.timeout
- tracking.default_comment / tracking.reminder_minutes
- history.db
- log.level / log.format

Every key can be overridden by an environment variable, for example
JIRALOG_JIRA_API_TOKEN.`,
	Example: `
  # Create default config in $HOME/.jiralog.yaml
  jiralog config create

  # Show active config and source file
  jiralog config show

  # Open active config in editor (creates example if missing)
  jiralog config edit

  # Delete active config file
  jiralog config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
