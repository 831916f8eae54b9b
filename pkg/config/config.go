package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Logging struct {
		Level     string `yaml:"level" default:"info"`
		Format    string `yaml:"format" default:"console"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled   bool          `yaml:"enabled"`
			Topic     string        `yaml:"topic" default:"gigastonks.logs"`
			Interval  time.Duration `yaml:"interval" default:"30s"`
			Threshold int           `yaml:"threshold" default:"100"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled       bool          `yaml:"enabled" default:"true"`
		Path          string        `yaml:"path" default:"/metrics"`
		SlowThreshold time.Duration `yaml:"slow_threshold" default:"2s"`
	} `yaml:"metrics"`
	Finnhub struct {
		APIKey       string        `yaml:"api_key"`
		BaseURL      string        `yaml:"base_url" default:"https://finnhub.io/api/v1"`
		Timeout      time.Duration `yaml:"timeout" default:"10s"`
		MaxIdleConns int           `yaml:"max_idle_conns" default:"64"`
		UserAgent    string        `yaml:"user_agent" default:"gigastonks"`
	} `yaml:"finnhub"`
	AlphaVantage struct {
		APIKey  string   `yaml:"api_key"`
		BaseURL string   `yaml:"base_url" default:"https://www.alphavantage.co"`
		Regions []string `yaml:"regions" default:"[\"United States\",\"Germany\"]"`
	} `yaml:"alphavantage"`
	Quotes struct {
		ResetSelection string        `yaml:"reset_selection" default:"last-in-submission-order"`
		CacheTTL       time.Duration `yaml:"cache_ttl" default:"15s"`
	} `yaml:"quotes"`
	Cache struct {
		Backend string `yaml:"backend" default:"memory"` // memory | redis
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"gigastonks"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled" default:"true"`
		Capacity     float64 `yaml:"capacity" default:"10"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"0.5"`
	} `yaml:"ratelimit"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"quotes.snapshots"`
		ClientID     string   `yaml:"client_id" default:"gigastonks"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"1s"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Indices []IndexConfig `yaml:"indices"`
}

// IndexConfig is one market index universe as written in YAML.
type IndexConfig struct {
	Name    string        `yaml:"name"`
	Entries []EntryConfig `yaml:"entries"`
}

// EntryConfig is one (ticker, display name) row of an index.
type EntryConfig struct {
	Ticker string `yaml:"ticker"`
	Name   string `yaml:"name"`
}

// Parse decodes YAML bytes, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c, err := Parse(b)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A .env file in the working directory is read first when present.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, err
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	// FINNHUB_API_TOKEN wins over FINNHUB_API_KEY.
	if v := os.Getenv("FINNHUB_API_TOKEN"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("FINNHUB_BASE_URL"); v != "" {
		c.Finnhub.BaseURL = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_TOKEN"); v != "" {
		c.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub.api_key is required")
	}
	if c.Finnhub.BaseURL == "" {
		return fmt.Errorf("finnhub.base_url is required")
	}
	switch c.Quotes.ResetSelection {
	case "last-in-submission-order", "max-across-batch":
	default:
		return fmt.Errorf("quotes.reset_selection must be 'last-in-submission-order' or 'max-across-batch', got '%s'", c.Quotes.ResetSelection)
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Logging.Collector.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("logging.collector requires kafka.enabled")
	}
	if len(c.Indices) == 0 {
		return fmt.Errorf("indices cannot be empty")
	}
	seen := make(map[string]struct{}, len(c.Indices))
	for i, idx := range c.Indices {
		if idx.Name == "" {
			return fmt.Errorf("indices[%d].name is required", i)
		}
		if _, dup := seen[idx.Name]; dup {
			return fmt.Errorf("indices[%d]: duplicate index '%s'", i, idx.Name)
		}
		seen[idx.Name] = struct{}{}
		if len(idx.Entries) == 0 {
			return fmt.Errorf("indices[%d] '%s' has no entries", i, idx.Name)
		}
		for j, e := range idx.Entries {
			if e.Ticker == "" {
				return fmt.Errorf("indices[%d] '%s' entry %d: ticker is required", i, idx.Name, j)
			}
		}
	}
	return nil
}
