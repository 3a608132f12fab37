package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"jiralog/duration"

	"github.com/spf13/cobra"
)

var durationCmd = &cobra.Command{
	Use:   "duration",
	Short: "Convert between Jira duration text and seconds.",
}

var durationParseCmd = &cobra.Command{
	Use:   "parse <TEXT>",
	Short: "Print the seconds Jira would log for a duration.",
	Long: `Parse Jira duration text and print the number of seconds.

Results are never below 60 seconds. A bare number is read as hours.`,
	Example: `
  jiralog duration parse "1h 30m"
  jiralog duration parse 1.5
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		seconds, err := duration.Parse(text)
		if err != nil {
			return err
		}
		normalized, err := duration.Normalize(text)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d seconds (%s)\n", seconds, normalized)
		return nil
	},
}

var durationFormatCmd = &cobra.Command{
	Use:   "format <SECONDS>",
	Short: "Render seconds as Jira duration text.",
	Example: `
  jiralog duration format 5400
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || seconds < 0 {
			return fmt.Errorf("invalid seconds value %q", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), duration.Format(seconds))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(durationCmd)
	durationCmd.AddCommand(durationParseCmd)
	durationCmd.AddCommand(durationFormatCmd)
}
