package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://slack.com/api", cfg.Slack.APIBaseURL)
	assert.Equal(t, 30, cfg.Slack.SearchWindowDays)
	assert.Equal(t, 3, cfg.Slack.RetryAttempts)
	assert.Equal(t, "hooks.slack.com", cfg.Slack.WebhookHost)
	assert.Equal(t, "dev", cfg.Git.ReleaseBranch)
	assert.Equal(t, "ATT", cfg.Tickets.Prefix)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ATDN_CHANNEL", "release-train")
	t.Setenv("ATDN_TICKET_PREFIX", "IL")
	t.Setenv("ATDN_RETRY_DELAY_MILLIS", "50")
	t.Setenv("ATDN_SEARCH_WINDOW_DAYS", "not-a-number")

	cfg := DefaultConfig()
	cfg.applyEnv()

	assert.Equal(t, "release-train", cfg.Slack.Channel)
	assert.Equal(t, "IL", cfg.Tickets.Prefix)
	assert.Equal(t, 50*time.Millisecond, cfg.RetryDelay())
	// malformed numeric override keeps the default
	assert.Equal(t, 30, cfg.Slack.SearchWindowDays)
}

func TestLoadWithoutFile(t *testing.T) {
	// point the config dir somewhere empty
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Slack.Channel, cfg.Slack.Channel)
}
