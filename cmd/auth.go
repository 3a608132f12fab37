package cmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"jiralog/config"
	"jiralog/jira"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage and verify Jira API token credentials.",
	Long: `Authentication helpers for Jira Basic authentication (email or username + API token).

Use "auth login" to enter and verify credentials and store them in the config file.
Use "auth check" to verify the stored credentials and the work-log permission.
Use "auth logout" to remove the stored API token.`,
}

var authCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify credentials and report work-log permission.",
	Example: `
  # Verify stored credentials
  jiralog auth check
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := loadJiraClient()
		if err != nil {
			return err
		}

		result := client.ValidateCredentials(withCommandContext(cmd))
		printValidationResult(cmd.OutOrStdout(), result)
		if !result.Valid {
			return fmt.Errorf("credentials rejected")
		}
		return nil
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Enter Jira credentials, verify them and save them to the config file.",
	Long: `Prompt for the Jira URL, username (email for Jira Cloud) and API token.

The credentials are verified against Jira before they are written. Create an
API token at https://id.atlassian.com/manage-profile/security/api-tokens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := activeConfigPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}
		if _, err := ensureConfigFile(configPath); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		reader := bufio.NewReader(cmd.InOrStdin())
		creds, err := promptCredentials(reader, out, viper.GetString(config.KeyJiraURL), viper.GetString(config.KeyJiraUsername))
		if err != nil {
			return err
		}

		client, err := jira.NewClient(loginClientConfig(creds))
		if err != nil {
			return err
		}
		result := client.ValidateCredentials(withCommandContext(cmd))
		printValidationResult(out, result)
		if !result.Valid {
			return fmt.Errorf("credentials rejected; nothing was saved")
		}

		return updateConfigFile(configPath, func(root *yaml.Node) error {
			jiraSection, err := mappingSection(root, "jira")
			if err != nil {
				return err
			}
			setScalar(jiraSection, "url", creds.BaseURL)
			setScalar(jiraSection, "username", creds.Username)
			setScalar(jiraSection, "api_token", creds.APIToken)
			return nil
		})
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API token from the config file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			return fmt.Errorf("no configuration file found")
		}
		if err := updateConfigFile(configPath, func(root *yaml.Node) error {
			jiraSection, err := mappingSection(root, "jira")
			if err != nil {
				return err
			}
			removeKey(jiraSection, "api_token")
			return nil
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "API token removed from %s\n", configPath)
		return nil
	},
}

func printValidationResult(out io.Writer, result jira.ValidationResult) {
	if !result.Valid {
		fmt.Fprintf(out, "Authentication failed: %s\n", result.Error)
		return
	}

	if result.User != nil {
		fmt.Fprintf(out, "Authenticated as: %s", result.User.DisplayName)
		if result.User.EmailAddress != "" {
			fmt.Fprintf(out, " <%s>", result.User.EmailAddress)
		}
		fmt.Fprintln(out)
	}

	switch {
	case result.Permissions == nil || result.Permissions.CanLogWork == nil:
		fmt.Fprintln(out, "Work-log permission: unknown (permission lookup failed)")
	case *result.Permissions.CanLogWork:
		fmt.Fprintln(out, "Work-log permission: granted")
	default:
		fmt.Fprintln(out, "Work-log permission: missing (WORK_ON_ISSUES not granted)")
	}
}

func promptCredentials(reader *bufio.Reader, out io.Writer, defaultURL, defaultUser string) (jira.Credentials, error) {
	baseURL, err := promptWithDefault(reader, out, "Jira URL", defaultURL)
	if err != nil {
		return jira.Credentials{}, err
	}
	username, err := promptWithDefault(reader, out, "Username / email", defaultUser)
	if err != nil {
		return jira.Credentials{}, err
	}
	token, err := promptRequiredString(reader, out, "API token")
	if err != nil {
		return jira.Credentials{}, err
	}
	return jira.Credentials{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		APIToken: token,
	}, nil
}

func promptWithDefault(reader *bufio.Reader, out io.Writer, label, fallback string) (string, error) {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		return promptRequiredString(reader, out, label)
	}

	fmt.Fprintf(out, "%s [%s]: ", label, fallback)
	input, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	if value := strings.TrimSpace(input); value != "" {
		return value, nil
	}
	return fallback, nil
}

func promptRequiredString(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	for {
		fmt.Fprintf(out, "%s: ", strings.TrimSpace(label))
		input, err := reader.ReadString('\n')
		if value := strings.TrimSpace(input); value != "" {
			return value, nil
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", strings.TrimSpace(strings.ToLower(label)), err)
		}
		fmt.Fprintln(out, "Value must not be empty.")
	}
}

// loginClientConfig applies the configured transport settings to credentials
// that have not been saved yet.
func loginClientConfig(creds jira.Credentials) jira.ClientConfig {
	return clientConfigFromConfig(&config.Config{Jira: config.JiraConfig{
		URL:        creds.BaseURL,
		Username:   creds.Username,
		APIToken:   creds.APIToken,
		APIVersion: viper.GetString(config.KeyJiraAPIVersion),
		XSRFBypass: viper.GetBool(config.KeyJiraXSRFBypass),
		Timeout:    viper.GetDuration(config.KeyJiraTimeout),
	}})
}

// updateConfigFile applies edit to the YAML document at path, validates the
// result and writes it back.
func updateConfigFile(path string, edit func(root *yaml.Node) error) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	updated, err := editConfigYAML(content, edit)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, updated, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// editConfigYAML hands the top-level mapping to edit. Working on the node tree
// keeps comments and key order of the rest of the file.
func editConfigYAML(content []byte, edit func(root *yaml.Node) error) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	if doc.Kind == 0 {
		doc.Kind = yaml.DocumentNode
	}
	if len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config root must be a mapping")
	}
	if err := edit(root); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("marshal updated config yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal updated config yaml: %w", err)
	}
	updated := buf.Bytes()
	if _, err := config.ValidateYAMLContent(updated); err != nil {
		return nil, fmt.Errorf("updated config is invalid: %w", err)
	}
	return updated, nil
}

// mappingSection returns the mapping stored under key, creating it when the
// key is missing or empty.
func mappingSection(mapping *yaml.Node, key string) (*yaml.Node, error) {
	value := mappingValue(mapping, key)
	switch {
	case value == nil:
		section := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		mapping.Content = append(mapping.Content, stringNode(key), section)
		return section, nil
	case value.Kind == yaml.MappingNode:
		return value, nil
	case value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null":
		value.Kind = yaml.MappingNode
		value.Tag = "!!map"
		value.Value = ""
		return value, nil
	default:
		return nil, fmt.Errorf("config key %q must be a mapping", key)
	}
}

func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// setScalar stores value as a quoted string, in place when key exists.
func setScalar(mapping *yaml.Node, key, value string) {
	if existing := mappingValue(mapping, key); existing != nil {
		existing.Kind = yaml.ScalarNode
		existing.Tag = "!!str"
		existing.Value = value
		existing.Style = yaml.DoubleQuotedStyle
		existing.Content = nil
		return
	}
	node := stringNode(value)
	node.Style = yaml.DoubleQuotedStyle
	mapping.Content = append(mapping.Content, stringNode(key), node)
}

func removeKey(mapping *yaml.Node, key string) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content = append(mapping.Content[:i], mapping.Content[i+2:]...)
			return true
		}
	}
	return false
}

func stringNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func withCommandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authCheckCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
}
