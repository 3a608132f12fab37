package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

If a configuration file is already in use, no new file is written. The file is
created with mode 0600 because it holds the Jira API token.`,
	Example: `
  # Create default config at $HOME/.jiralog.yaml
  jiralog config create

  # Create config at a custom path
  jiralog --configFile ./team.yaml config create
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig(cmd.OutOrStdout())
	},
}

func saveDefaultConfig(out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}

	configPath, err := activeConfigPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := ensureConfigFile(configPath)
	if err != nil {
		return err
	}

	if !created {
		fmt.Fprintf(out, "Config file already exists at: %s\n", configPath)
		return nil
	}

	fmt.Fprintf(out, "New config file created at: %s\n", configPath)
	fmt.Fprintln(out, "Next: store your Jira credentials with `jiralog auth login` or `jiralog config edit`.")
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)
}
