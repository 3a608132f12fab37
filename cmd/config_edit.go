package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"jiralog/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultEditor = "vi"

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the active config in an editor.",
	Long: `Open the active jiralog config file in $VISUAL, $EDITOR or vi.

A missing config file is created from the example template first. The file is
validated once the editor exits; jiralog reports whether Jira credentials are
still missing.`,
	Example: `
  jiralog config edit
  VISUAL="code --wait" jiralog config edit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := activeConfigPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		created, err := ensureConfigFile(configPath)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "No config file found. Created example config at: %s\n", configPath)
		}

		editor := pickEditor(os.Getenv("VISUAL"), os.Getenv("EDITOR"))
		if err := runEditor(editor, configPath); err != nil {
			return err
		}
		return reportEditedConfig(cmd.OutOrStdout(), configPath)
	},
}

func runEditor(editor, configPath string) error {
	command, err := editorCommand(editor, configPath)
	if err != nil {
		return err
	}
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	if err := command.Run(); err != nil {
		return fmt.Errorf("running editor %q: %w", editor, err)
	}
	return nil
}

// reportEditedConfig validates the file at path and tells the user whether
// Jira commands can authenticate with it.
func reportEditedConfig(out io.Writer, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading edited config: %w", err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		return fmt.Errorf("config validation failed in %s: %w", path, err)
	}

	fmt.Fprintf(out, "Configuration saved and validated: %s\n", path)
	if !cfg.Jira.HasCredentials() {
		fmt.Fprintln(out, "Note: jira.username or jira.api_token is empty; run `jiralog auth login` before using Jira commands.")
	}
	return nil
}

// activeConfigPath prefers --configFile, then the file viper loaded, then
// $HOME/.jiralog.yaml.
func activeConfigPath(flagValue, loaded string) (string, error) {
	for _, candidate := range []string{flagValue, loaded} {
		if strings.TrimSpace(candidate) != "" {
			return candidate, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".jiralog.yaml"), nil
}

// ensureConfigFile writes the example config to path unless a file exists.
// The file holds the API token and is created owner-readable only.
func ensureConfigFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleYAML()), 0o600); err != nil {
		return false, fmt.Errorf("writing example config: %w", err)
	}
	return true, nil
}

func pickEditor(visual, editor string) string {
	for _, candidate := range []string{visual, editor} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return defaultEditor
}

func editorCommand(editor, configPath string) (*exec.Cmd, error) {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return nil, fmt.Errorf("editor command is empty")
	}
	return exec.Command(fields[0], append(fields[1:], configPath)...), nil
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
