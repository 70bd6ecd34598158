// Package config loads aria-download settings from environment variables.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
	log "github.com/sirupsen/logrus"
)

// Config holds settings that are not part of a single query.
type Config struct {
	SearchURL string        `env:"ARIA_SEARCH_URL" envDefault:"https://api.daac.asf.alaska.edu"`
	Timeout   time.Duration `env:"ARIA_TIMEOUT" envDefault:"60s"`
	UserAgent string        `env:"ARIA_USER_AGENT" envDefault:"aria-download/1.0"`

	Download  DownloadConfig  `envPrefix:"ARIA_DOWNLOAD_"`
	Logging   LoggingConfig   `envPrefix:"ARIA_LOG_"`
	Earthdata EarthdataConfig `envPrefix:"EARTHDATA_"`
}

// DownloadConfig controls product retrieval.
type DownloadConfig struct {
	// Timeout bounds a whole retrieval run, not a single request; zero
	// means no limit.
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"0s"`
	Workers      int           `env:"WORKERS" envDefault:"1"`
	AllowedHosts []string      `env:"ALLOWED_HOSTS" envSeparator:"," envDefault:"asf.alaska.edu,earthdata.nasa.gov,amazonaws.com,cloudfront.net"`
	AllowS3      bool          `env:"ALLOW_S3" envDefault:"false"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// EarthdataConfig holds optional Earthdata login credentials for downloads.
type EarthdataConfig struct {
	Token    string   `env:"TOKEN"`
	Username string   `env:"USERNAME"`
	Password string   `env:"PASSWORD"`
	Hosts    []string `env:"HOSTS" envSeparator:"," envDefault:"earthdata.nasa.gov,asf.alaska.edu"`
}

// Load parses configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.SearchURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("search URL must be an absolute URL, got %q", c.SearchURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	if c.Download.Timeout < 0 {
		return fmt.Errorf("download timeout must not be negative, got %s", c.Download.Timeout)
	}

	if c.Download.Workers < 1 {
		return fmt.Errorf("download workers must be at least 1, got %d", c.Download.Workers)
	}

	if len(c.Download.AllowedHosts) == 0 {
		return fmt.Errorf("download allowed hosts must not be empty")
	}

	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q, must be one of: text, json", c.Logging.Format)
	}

	if (c.Earthdata.Username == "") != (c.Earthdata.Password == "") {
		return fmt.Errorf("earthdata username and password must be set together")
	}

	return nil
}

// Apply configures the standard logrus logger. verbose raises the level to
// debug.
func (l LoggingConfig) Apply(verbose bool) error {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	if verbose && level < log.DebugLevel {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if l.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
