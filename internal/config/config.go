package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server Server `yaml:"server"`
	Twitch Twitch `yaml:"twitch"`
	Poster Poster `yaml:"poster"`
	Store  Store  `yaml:"store"`
	Warmup Warmup `yaml:"warmup"`
}

// Server holds HTTP server configuration.
type Server struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"8972"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
}

// Twitch holds Helix API credentials and embed settings. Enrichment is
// optional: with no client ID the service resolves identity and channel
// posters only.
type Twitch struct {
	ClientID     string `yaml:"client_id" envconfig:"TWITCH_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" envconfig:"TWITCH_CLIENT_SECRET"`
	ParentDomain string `yaml:"parent_domain" envconfig:"TWITCH_PARENT_DOMAIN"`
}

// Poster holds poster probing and cache configuration.
type Poster struct {
	TTL          time.Duration `yaml:"ttl" envconfig:"POSTER_TTL" default:"3m"`
	NegativeTTL  time.Duration `yaml:"negative_ttl" envconfig:"POSTER_NEGATIVE_TTL" default:"30s"`
	ProbeTimeout time.Duration `yaml:"probe_timeout" envconfig:"POSTER_PROBE_TIMEOUT" default:"10s"`
	UserAgent    string        `yaml:"user_agent" envconfig:"POSTER_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
}

// Store holds resolution store configuration.
type Store struct {
	Path string `yaml:"path" envconfig:"STORE_PATH" default:"/data/twitchpeek.db"`
}

// Warmup holds poster warmup pool configuration. Channels can only be set
// via the config file.
type Warmup struct {
	Channels []string      `yaml:"channels" envconfig:"WARMUP_CHANNELS"`
	Workers  int           `yaml:"workers" envconfig:"WARMUP_WORKERS" default:"2"`
	Interval time.Duration `yaml:"interval" envconfig:"WARMUP_INTERVAL" default:"1m"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Server.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	if c.Twitch.ClientID != "" && c.Twitch.ClientSecret == "" {
		return fmt.Errorf("TWITCH_CLIENT_SECRET is required when TWITCH_CLIENT_ID is set")
	}
	if c.Poster.TTL <= 0 {
		return fmt.Errorf("POSTER_TTL must be positive")
	}
	if c.Warmup.Interval <= 0 {
		return fmt.Errorf("WARMUP_INTERVAL must be positive")
	}
	return nil
}

// Address returns the server address in host:port format.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// HelixEnabled reports whether Helix enrichment credentials are configured.
func (t *Twitch) HelixEnabled() bool {
	return t.ClientID != "" && t.ClientSecret != ""
}
