package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"jiralog/config"
	"jiralog/jira"
	"jiralog/storage"

	"github.com/spf13/viper"
)

func loadRuntimeConfig() (*config.Config, error) {
	if strings.TrimSpace(viper.ConfigFileUsed()) == "" {
		return nil, errors.New("no config file loaded; create one with `jiralog config create`")
	}
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func clientConfigFromConfig(cfg *config.Config) jira.ClientConfig {
	clientLogger := logger.With().Str("component", "jira").Logger()
	return jira.ClientConfig{
		Credentials: jira.Credentials{
			BaseURL:  cfg.Jira.URL,
			Username: strings.TrimSpace(cfg.Jira.Username),
			APIToken: strings.TrimSpace(cfg.Jira.APIToken),
		},
		APIVersion:        cfg.Jira.APIVersion,
		DisableXSRFBypass: !cfg.Jira.XSRFBypass,
		UserAgent:         "jiralog",
		HTTPClient:        &http.Client{Timeout: cfg.Jira.Timeout},
		Logger:            &clientLogger,
	}
}

func newJiraClient(cfg *config.Config) (*jira.HTTPClient, error) {
	client, err := jira.NewClient(clientConfigFromConfig(cfg))
	if errors.Is(err, jira.ErrUninitialized) {
		return nil, fmt.Errorf("%w: run `jiralog auth login` or set jira.username and jira.api_token", err)
	}
	return client, err
}

func loadJiraClient() (*config.Config, *jira.HTTPClient, error) {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := newJiraClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

func resolveHistoryPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if path := strings.TrimSpace(viper.GetString(config.KeyHistoryDB)); path != "" {
		return path
	}
	return config.DefaultHistoryPath()
}

func openHistory(flagValue string) (*storage.SQLiteStore, string, error) {
	path := resolveHistoryPath(flagValue)
	store, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, path, err
	}
	return store, path, nil
}
