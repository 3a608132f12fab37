package cmd

import (
	"fmt"
	"strings"

	"jiralog/jira"

	"github.com/spf13/cobra"
)

var (
	issueCreateProject string
	issueCreateSummary string
	issueCreateType    string
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Work with single Jira issues.",
}

var issueCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new issue in a project.",
	Long: `Create an issue with a summary and an issue type.

Supported issue types are Task, Bug and Story. Any other value falls back to Task.`,
	Example: `
  # Create a task
  jiralog issue create --project OPS --summary "Rotate certificates"

  # Create a bug
  jiralog issue create -p OPS -s "Login page returns 500" -t Bug
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectKey := strings.ToUpper(strings.TrimSpace(issueCreateProject))
		summary := strings.TrimSpace(issueCreateSummary)
		if projectKey == "" || summary == "" {
			return fmt.Errorf("--project and --summary are required")
		}

		_, client, err := loadJiraClient()
		if err != nil {
			return err
		}

		issueType := jira.ParseIssueType(issueCreateType)
		created, err := client.CreateIssue(withCommandContext(cmd), projectKey, summary, issueType.String())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s: %s\n", issueType, created.Key, summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.AddCommand(issueCreateCmd)

	issueCreateCmd.Flags().StringVarP(&issueCreateProject, "project", "p", "", "Project key")
	issueCreateCmd.Flags().StringVarP(&issueCreateSummary, "summary", "s", "", "Issue summary")
	issueCreateCmd.Flags().StringVarP(&issueCreateType, "type", "t", jira.IssueTypeTask.String(), "Issue type: Task|Bug|Story")
}
