package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Phillies", cfg.TeamName)
	assert.Equal(t, "backward", cfg.RecordSearchDirection)
	assert.Equal(t, 7, cfg.RecordSearchDays)
	assert.Equal(t, 20, cfg.StatsLookbackDays)
	assert.Equal(t, 5*time.Minute, cfg.PendingTTL)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TEAM_NAME", "Mets")
	t.Setenv("RECORD_SEARCH_DIRECTION", "forward")
	t.Setenv("STATS_LOOKBACK_DAYS", "10")
	t.Setenv("ANNOUNCE_CHAT_IDS", "12345,-100987")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Mets", cfg.TeamName)
	assert.Equal(t, "forward", cfg.RecordSearchDirection)
	assert.Equal(t, 10, cfg.StatsLookbackDays)

	chats, err := cfg.AnnounceChats()
	require.NoError(t, err)
	assert.Equal(t, []int64{12345, -100987}, chats)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero record window", func(c *Config) { c.RecordSearchDays = 0 }},
		{"zero stats window", func(c *Config) { c.StatsLookbackDays = 0 }},
		{"unknown direction", func(c *Config) { c.RecordSearchDirection = "sideways" }},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "oracle" }},
		{"bad timezone", func(c *Config) { c.TeamTimezone = "Mars/Olympus" }},
		{"bad chat id", func(c *Config) { c.AnnounceChatIDs = []string{"abc"} }},
		{"empty team", func(c *Config) { c.TeamName = "  " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestReadToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(path, []byte("123:abc \nsecond line\n"), 0o600))

	cfg := &Config{TelegramTokenFile: path}
	token, err := cfg.ReadToken()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", token)
}

func TestReadToken_MissingOrEmpty(t *testing.T) {
	dir := t.TempDir()

	cfg := &Config{TelegramTokenFile: filepath.Join(dir, "missing")}
	_, err := cfg.ReadToken()
	assert.Error(t, err, "missing token file must fail startup")

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o600))
	cfg.TelegramTokenFile = empty
	_, err = cfg.ReadToken()
	assert.Error(t, err, "empty token file must fail startup")
}
