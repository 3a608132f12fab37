package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyJiraURL                = "jira.url"
	KeyJiraUsername           = "jira.username"
	KeyJiraAPIToken           = "jira.api_token"
	KeyJiraAPIVersion         = "jira.api_version"
	KeyJiraXSRFBypass         = "jira.xsrf_bypass"
	KeyJiraTimeout            = "jira.timeout"
	KeyTrackingDefaultComment = "tracking.default_comment"
	KeyTrackingReminder       = "tracking.reminder_minutes"
	KeyHistoryDB              = "history.db"
	KeyLogLevel               = "log.level"
	KeyLogFormat              = "log.format"
)

const DefaultComment = "Time logged via Jira Logger"

type Config struct {
	Jira     JiraConfig     `mapstructure:"jira" validate:"required"`
	Tracking TrackingConfig `mapstructure:"tracking"`
	History  HistoryConfig  `mapstructure:"history"`
	Log      LogConfig      `mapstructure:"log"`
}

type JiraConfig struct {
	URL        string        `mapstructure:"url" validate:"required,url"`
	Username   string        `mapstructure:"username"`
	APIToken   string        `mapstructure:"api_token"`
	APIVersion string        `mapstructure:"api_version" validate:"oneof=2 3"`
	XSRFBypass bool          `mapstructure:"xsrf_bypass"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// HasCredentials reports whether username and token are both set.
func (c JiraConfig) HasCredentials() bool {
	return strings.TrimSpace(c.Username) != "" && strings.TrimSpace(c.APIToken) != ""
}

type TrackingConfig struct {
	DefaultComment  string `mapstructure:"default_comment"`
	ReminderMinutes int    `mapstructure:"reminder_minutes" validate:"gte=0"`
}

type HistoryConfig struct {
	DB string `mapstructure:"db" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=console json"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// DefaultHistoryPath is the history database location used when history.db is unset.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".jiralog", "history.db")
	}
	return filepath.Join(home, ".jiralog", "history.db")
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# jiralog configuration
jira:
  url: "https://your-domain.atlassian.net"
  username: "you@example.com"
  # Create a token at https://id.atlassian.com/manage-profile/security/api-tokens
  api_token: ""
  api_version: "2"
  xsrf_bypass: true
  timeout: 30s

tracking:
  default_comment: "Time logged via Jira Logger"
  reminder_minutes: 30

log:
  level: info
  format: console
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Jira.URL = strings.TrimRight(strings.TrimSpace(cfg.Jira.URL), "/")
	cfg.Jira.APIVersion = strings.TrimSpace(cfg.Jira.APIVersion)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyJiraAPIVersion, "2")
	v.SetDefault(KeyJiraXSRFBypass, true)
	v.SetDefault(KeyJiraTimeout, 30*time.Second)
	v.SetDefault(KeyTrackingDefaultComment, DefaultComment)
	v.SetDefault(KeyTrackingReminder, 30)
	v.SetDefault(KeyHistoryDB, DefaultHistoryPath())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}
