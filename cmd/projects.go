package cmd

import (
	"fmt"
	"strings"

	"jiralog/internal/formatter"
	"jiralog/jira"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List Jira projects visible to the configured account.",
	Example: `
  jiralog projects
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := loadJiraClient()
		if err != nil {
			return err
		}

		projects, err := client.ListProjects(withCommandContext(cmd))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjects(projects))
		return nil
	},
}

var issuesCmd = &cobra.Command{
	Use:   "issues <PROJECT>",
	Short: "List the most recently updated issues of a project.",
	Long: fmt.Sprintf(`List up to %d issues of a project, most recently updated first.`, jira.MaxIssueResults),
	Example: `
  jiralog issues OPS
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := loadJiraClient()
		if err != nil {
			return err
		}

		projectKey := strings.ToUpper(strings.TrimSpace(args[0]))
		issues, err := client.ListIssues(withCommandContext(cmd), projectKey)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.FormatIssues(projectKey, issues))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(issuesCmd)
}
