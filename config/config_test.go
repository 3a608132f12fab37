package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidateYAMLContent_ExampleIsValid(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(ExampleYAML()))
	if err != nil {
		t.Fatalf("expected example config to validate: %v", err)
	}
	if cfg.Jira.APIVersion != "2" {
		t.Fatalf("expected api version 2, got %q", cfg.Jira.APIVersion)
	}
	if cfg.Jira.Timeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %s", cfg.Jira.Timeout)
	}
	if cfg.Tracking.ReminderMinutes != 30 {
		t.Fatalf("expected 30 reminder minutes, got %d", cfg.Tracking.ReminderMinutes)
	}
}

func TestValidateYAMLContent_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(`jira:
  url: "https://example.atlassian.net/"
`))
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if cfg.Jira.URL != "https://example.atlassian.net" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Jira.URL)
	}
	if !cfg.Jira.XSRFBypass {
		t.Fatalf("expected xsrf bypass enabled by default")
	}
	if cfg.Tracking.DefaultComment != DefaultComment {
		t.Fatalf("unexpected default comment %q", cfg.Tracking.DefaultComment)
	}
	if cfg.History.DB == "" {
		t.Fatalf("expected default history path")
	}
	if cfg.Jira.HasCredentials() {
		t.Fatalf("expected no credentials")
	}
}

func TestValidateYAMLContent_RejectsInvalidValues(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing url": `jira:
  username: "a"
`,
		"bad api version": `jira:
  url: "https://example.atlassian.net"
  api_version: "4"
`,
		"negative reminder": `jira:
  url: "https://example.atlassian.net"
tracking:
  reminder_minutes: -5
`,
		"bad log level": `jira:
  url: "https://example.atlassian.net"
log:
  level: "loud"
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateYAMLContent([]byte(content))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), "validation failed") {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestJiraConfig_HasCredentials(t *testing.T) {
	t.Parallel()

	cfg := JiraConfig{Username: "me@example.com", APIToken: " "}
	if cfg.HasCredentials() {
		t.Fatalf("expected blank token to count as missing")
	}
	cfg.APIToken = "token"
	if !cfg.HasCredentials() {
		t.Fatalf("expected credentials")
	}
}
