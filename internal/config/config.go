package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Slack   SlackConfig   `toml:"slack"`
	Tickets TicketsConfig `toml:"tickets"`
	Git     GitConfig     `toml:"git"`
	Notify  NotifyConfig  `toml:"notify"`
}

type SlackConfig struct {
	APIBaseURL       string `toml:"api_base_url"`
	Channel          string `toml:"channel"`
	SearchWindowDays int    `toml:"search_window_days"`
	RetryAttempts    int    `toml:"retry_attempts"`
	RetryDelayMillis int    `toml:"retry_delay_millis"`
	RequestTimeoutMS int    `toml:"request_timeout_millis"`
	WebhookHost      string `toml:"webhook_host"`
}

type TicketsConfig struct {
	Prefix       string `toml:"prefix"`
	IssueBaseURL string `toml:"issue_base_url"`
}

type GitConfig struct {
	ReleaseBranch string `toml:"release_branch"`
	RepoURLBase   string `toml:"repo_url_base"`
	NoreplyDomain string `toml:"noreply_domain"`
}

type NotifyConfig struct {
	DefaultDescription string `toml:"default_description"`
}

func DefaultConfig() *Config {
	return &Config{
		Slack: SlackConfig{
			APIBaseURL:       "https://slack.com/api",
			Channel:          "deployments",
			SearchWindowDays: 30,
			RetryAttempts:    3,
			RetryDelayMillis: 2000,
			RequestTimeoutMS: 10000,
			WebhookHost:      "hooks.slack.com",
		},
		Tickets: TicketsConfig{
			Prefix:       "ATT",
			IssueBaseURL: "https://linear.app/attuned/issue",
		},
		Git: GitConfig{
			ReleaseBranch: "dev",
			RepoURLBase:   "https://github.com/wahlandcase",
			NoreplyDomain: "users.noreply.github.com",
		},
		Notify: NotifyConfig{
			DefaultDescription: "New deployment",
		},
	}
}

func configPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "atdn.toml"), nil
}

// Load reads the config file, falling back to defaults when it does not
// exist, then applies ATDN_* environment overrides on top. CI runs usually
// have no config file at all and configure everything via environment.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := configPath()
	if err != nil {
		cfg.applyEnv()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// applyEnv overlays ATDN_* environment variables onto the config
func (c *Config) applyEnv() {
	overlayString(&c.Slack.APIBaseURL, "ATDN_SLACK_API_BASE_URL")
	overlayString(&c.Slack.Channel, "ATDN_CHANNEL")
	overlayInt(&c.Slack.SearchWindowDays, "ATDN_SEARCH_WINDOW_DAYS")
	overlayInt(&c.Slack.RetryAttempts, "ATDN_RETRY_ATTEMPTS")
	overlayInt(&c.Slack.RetryDelayMillis, "ATDN_RETRY_DELAY_MILLIS")
	overlayInt(&c.Slack.RequestTimeoutMS, "ATDN_REQUEST_TIMEOUT_MILLIS")
	overlayString(&c.Slack.WebhookHost, "ATDN_WEBHOOK_HOST")
	overlayString(&c.Tickets.Prefix, "ATDN_TICKET_PREFIX")
	overlayString(&c.Tickets.IssueBaseURL, "ATDN_ISSUE_BASE_URL")
	overlayString(&c.Git.ReleaseBranch, "ATDN_RELEASE_BRANCH")
	overlayString(&c.Git.RepoURLBase, "ATDN_REPO_URL_BASE")
	overlayString(&c.Git.NoreplyDomain, "ATDN_NOREPLY_DOMAIN")
	overlayString(&c.Notify.DefaultDescription, "ATDN_DEFAULT_DESCRIPTION")
}

func overlayString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overlayInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// RetryDelay returns the configured inter-attempt delay
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Slack.RetryDelayMillis) * time.Millisecond
}

// RequestTimeout returns the per-attempt HTTP timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Slack.RequestTimeoutMS) * time.Millisecond
}
