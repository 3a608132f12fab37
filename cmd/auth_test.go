package cmd

import (
	"bufio"
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"jiralog/config"
	"jiralog/jira"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestEditConfigYAML_StoresCredentials(t *testing.T) {
	t.Parallel()

	input := []byte(`jira:
  url: "https://old.atlassian.net"
  api_version: "3"
tracking:
  reminder_minutes: 15
`)

	updated, err := editConfigYAML(input, func(root *yaml.Node) error {
		section, err := mappingSection(root, "jira")
		if err != nil {
			return err
		}
		setScalar(section, "url", "https://new.atlassian.net")
		setScalar(section, "username", "me@example.com")
		setScalar(section, "api_token", "secret")
		return nil
	})
	if err != nil {
		t.Fatalf("edit config: %v", err)
	}

	cfg, err := config.ValidateYAMLContent(updated)
	if err != nil {
		t.Fatalf("updated yaml should validate: %v", err)
	}
	if cfg.Jira.URL != "https://new.atlassian.net" || cfg.Jira.APIToken != "secret" {
		t.Fatalf("credentials not stored: %+v", cfg.Jira)
	}
	if cfg.Jira.APIVersion != "3" || cfg.Tracking.ReminderMinutes != 15 {
		t.Fatalf("existing values lost: %+v", cfg)
	}
}

func TestEditConfigYAML_KeepsCommentsAndOrder(t *testing.T) {
	t.Parallel()

	updated, err := editConfigYAML([]byte(config.ExampleYAML()), func(root *yaml.Node) error {
		section, err := mappingSection(root, "jira")
		if err != nil {
			return err
		}
		setScalar(section, "api_token", "secret")
		return nil
	})
	if err != nil {
		t.Fatalf("edit config: %v", err)
	}

	text := string(updated)
	for _, want := range []string{"# jiralog configuration", "# Create a token at", `api_token: "secret"`} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in updated config:\n%s", want, text)
		}
	}
	jiraAt := strings.Index(text, "jira:")
	trackingAt := strings.Index(text, "tracking:")
	logAt := strings.Index(text, "log:")
	if !(jiraAt < trackingAt && trackingAt < logAt) {
		t.Fatalf("section order changed:\n%s", text)
	}
	if strings.Index(text, "username:") > strings.Index(text, "api_token:") {
		t.Fatalf("key order inside jira changed:\n%s", text)
	}
}

func TestEditConfigYAML_RemovesToken(t *testing.T) {
	t.Parallel()

	input := []byte("jira:\n  url: \"https://x.atlassian.net\"\n  api_token: \"secret\" # personal\n  timeout: 10s\n")
	updated, err := editConfigYAML(input, func(root *yaml.Node) error {
		section, err := mappingSection(root, "jira")
		if err != nil {
			return err
		}
		if !removeKey(section, "api_token") {
			t.Errorf("expected api_token to be present")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("edit config: %v", err)
	}
	if strings.Contains(string(updated), "api_token") || strings.Contains(string(updated), "secret") {
		t.Fatalf("token still present:\n%s", updated)
	}
	if !strings.Contains(string(updated), "timeout: 10s") {
		t.Fatalf("sibling key lost:\n%s", updated)
	}
}

func TestEditConfigYAML_RejectsInvalidResult(t *testing.T) {
	t.Parallel()

	_, err := editConfigYAML([]byte("jira:\n  url: \"https://x.atlassian.net\"\n"), func(root *yaml.Node) error {
		section, err := mappingSection(root, "jira")
		if err != nil {
			return err
		}
		setScalar(section, "api_version", "9")
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "updated config is invalid") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEditConfigYAML_EmptyDocument(t *testing.T) {
	t.Parallel()

	updated, err := editConfigYAML(nil, func(root *yaml.Node) error {
		section, err := mappingSection(root, "jira")
		if err != nil {
			return err
		}
		setScalar(section, "url", "https://x.atlassian.net")
		return nil
	})
	if err != nil {
		t.Fatalf("edit config: %v", err)
	}
	if !strings.Contains(string(updated), `url: "https://x.atlassian.net"`) {
		t.Fatalf("unexpected config:\n%s", updated)
	}
}

func TestMappingSection(t *testing.T) {
	t.Parallel()

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte("jira:\ntracking: nope\n"), &doc); err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	root := doc.Content[0]

	section, err := mappingSection(root, "jira")
	if err != nil {
		t.Fatalf("empty key should become a mapping: %v", err)
	}
	if section.Kind != yaml.MappingNode {
		t.Fatalf("expected mapping node, got kind %v", section.Kind)
	}
	if _, err := mappingSection(root, "tracking"); err == nil {
		t.Fatalf("expected error for scalar tracking key")
	}
}

func TestLoginClientConfig_UsesConfiguredTransport(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()
	config.SetDefaults()
	viper.Set(config.KeyJiraTimeout, "12s")
	viper.Set(config.KeyJiraXSRFBypass, false)
	viper.Set(config.KeyJiraAPIVersion, "3")

	clientCfg := loginClientConfig(jira.Credentials{
		BaseURL:  "https://team.atlassian.net",
		Username: "me@example.com",
		APIToken: "token",
	})

	httpClient, ok := clientCfg.HTTPClient.(*http.Client)
	if !ok || httpClient.Timeout != 12*time.Second {
		t.Fatalf("expected 12s timeout, got %#v", clientCfg.HTTPClient)
	}
	if !clientCfg.DisableXSRFBypass {
		t.Fatalf("expected xsrf bypass disabled")
	}
	if clientCfg.APIVersion != "3" || clientCfg.APIToken != "token" {
		t.Fatalf("unexpected client config: %+v", clientCfg)
	}
}

func TestPromptCredentials_UsesDefaults(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("\n\n  token-123  \n"))
	creds, err := promptCredentials(reader, &out, "https://team.atlassian.net/", "me@example.com")
	if err != nil {
		t.Fatalf("prompt credentials: %v", err)
	}
	if creds.BaseURL != "https://team.atlassian.net" || creds.Username != "me@example.com" || creds.APIToken != "token-123" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}

func TestPromptRequiredString_RepromptsAndFailsOnEOF(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("\n"))
	if _, err := promptRequiredString(reader, &out, "API token"); err == nil {
		t.Fatalf("expected error on EOF without value")
	}
	if !strings.Contains(out.String(), "Value must not be empty.") {
		t.Fatalf("expected reprompt message, got %q", out.String())
	}
}

func TestPrintValidationResult(t *testing.T) {
	t.Parallel()

	granted := true
	tests := []struct {
		name   string
		result jira.ValidationResult
		want   string
	}{
		{
			name:   "rejected",
			result: jira.ValidationResult{Error: "Failed to validate credentials. Authentication failed"},
			want:   "Authentication failed: Failed to validate credentials.",
		},
		{
			name: "granted",
			result: jira.ValidationResult{
				Valid:       true,
				User:        &jira.User{DisplayName: "Ada", EmailAddress: "ada@example.com"},
				Permissions: &jira.Permissions{CanLogWork: &granted},
			},
			want: "Work-log permission: granted",
		},
		{
			name:   "unknown permission",
			result: jira.ValidationResult{Valid: true, User: &jira.User{DisplayName: "Ada"}},
			want:   "Work-log permission: unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			printValidationResult(&out, tt.result)
			if !strings.Contains(out.String(), tt.want) {
				t.Fatalf("expected %q in output, got %q", tt.want, out.String())
			}
		})
	}
}
