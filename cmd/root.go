/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jiralog/config"
	"jiralog/internal/logging"
)

var (
	cfgFile string
	verbose bool

	logger = zerolog.Nop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jiralog",
	Short: "Track time on Jira issues and log work through the Jira REST API.",
	Long: `
**********************************************
*                 JIRA LOG                   *
**********************************************

This CLI authenticates against Jira Cloud or Jira Server with an API token,
lists projects and issues, creates issues, tracks time on an issue and submits
work-log entries. Every accepted work log is recorded in a local SQLite history
that can be exported to CSV or Excel.

Durations use Jira notation: "1h 30m", "2h", "45m", "1.5h".
A bare number such as "2" is read as hours.
`,
	Example: `
  # Create configuration file, then fill in url, username and api_token
  jiralog config create

  # Check credentials and work-log permission
  jiralog auth check

  # List projects and the 50 most recently updated issues of one project
  jiralog projects
  jiralog issues OPS

  # Log 1h 30m on OPS-12
  jiralog log OPS-12 "1h 30m" --comment "Code review"

  # Track time interactively with a reminder every 30 minutes
  jiralog track OPS-12

  # Export daily summary of logged work
  jiralog history export --mode daily --output ./daily-summary.xlsx
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.jiralog.yaml, then ./.jiralog.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".jiralog" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".jiralog")
	}

	// JIRALOG_JIRA_API_TOKEN overrides jira.api_token.
	viper.SetEnvPrefix("JIRALOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: jiralog config create")
	}
}

func initLogger() {
	level := viper.GetString(config.KeyLogLevel)
	if verbose {
		level = "debug"
	}

	built, err := logging.New(level, viper.GetString(config.KeyLogFormat), os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid log settings:", err)
		built, _ = logging.New("info", "console", os.Stderr)
	}
	logger = built
}
