package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShippedConfig(t *testing.T) {
	b, err := os.ReadFile("../../config/config.yaml")
	require.NoError(t, err)

	c, err := Parse(b)
	require.NoError(t, err)

	require.Len(t, c.Indices, 2)
	assert.Equal(t, "djia", c.Indices[0].Name)
	assert.Len(t, c.Indices[0].Entries, 30)
	assert.Equal(t, "nasdaq", c.Indices[1].Name)
	assert.Len(t, c.Indices[1].Entries, 60)
	assert.Equal(t, "last-in-submission-order", c.Quotes.ResetSelection)
	assert.Equal(t, "https://finnhub.io/api/v1", c.Finnhub.BaseURL)
	assert.Equal(t, []string{"United States", "Germany"}, c.AlphaVantage.Regions)
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte("indices:\n  - name: x\n    entries:\n      - ticker: A\n"))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 10*time.Second, c.Finnhub.Timeout)
	assert.Equal(t, 15*time.Second, c.Quotes.CacheTTL)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.Equal(t, "quotes.snapshots", c.Kafka.Topic)
	assert.False(t, c.Kafka.Enabled)
	assert.Equal(t, "https://www.alphavantage.co", c.AlphaVantage.BaseURL)
	assert.Equal(t, []string{"United States", "Germany"}, c.AlphaVantage.Regions)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c, err := Parse([]byte("finnhub:\n  api_key: k\nindices:\n  - name: djia\n    entries:\n      - ticker: AAPL\n        name: Apple\n"))
		require.NoError(t, err)
		return c
	}

	require.NoError(t, base().Validate())

	c := base()
	c.Finnhub.APIKey = ""
	assert.ErrorContains(t, c.Validate(), "api_key")

	c = base()
	c.Quotes.ResetSelection = "first"
	assert.ErrorContains(t, c.Validate(), "reset_selection")

	c = base()
	c.Indices = append(c.Indices, c.Indices[0])
	assert.ErrorContains(t, c.Validate(), "duplicate")

	c = base()
	c.Indices[0].Entries = nil
	assert.ErrorContains(t, c.Validate(), "no entries")

	c = base()
	c.Kafka.Enabled = true
	assert.ErrorContains(t, c.Validate(), "brokers")

	c = base()
	c.Logging.Collector.Enabled = true
	assert.ErrorContains(t, c.Validate(), "collector")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("indices:\n  - name: djia\n    entries:\n      - ticker: AAPL\n"), 0o600))

	t.Setenv("FINNHUB_API_KEY", "from-key")
	t.Setenv("FINNHUB_API_TOKEN", "from-token")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALPHA_VANTAGE_API_TOKEN", "av")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "from-token", c.Finnhub.APIKey)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, "av", c.AlphaVantage.APIKey)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("indices:\n  - name: djia\n    entries:\n      - ticker: AAPL\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "api_key")
}
