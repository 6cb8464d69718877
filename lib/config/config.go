// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/gitter/lib/feed"
)

// EnvironmentVariable names the config file when --config is not given.
const EnvironmentVariable = "GITTER_CONFIG"

// Config is the client configuration.
type Config struct {
	// APIURL is the REST base URL.
	APIURL string `yaml:"api_url" json:"api_url"`

	// StreamURL is the streaming base URL.
	StreamURL string `yaml:"stream_url" json:"stream_url"`

	// SessionFile is where login stores the session.
	// Default: $XDG_CONFIG_HOME/gitter/session.json
	SessionFile string `yaml:"session_file" json:"session_file"`

	// IdentityFile is the age identity used to open a sealed session.
	IdentityFile string `yaml:"identity_file" json:"identity_file"`

	Feed    FeedConfig    `yaml:"feed" json:"feed"`
	Archive ArchiveConfig `yaml:"archive" json:"archive"`
	Render  RenderConfig  `yaml:"render" json:"render"`
	Store   StoreConfig   `yaml:"store" json:"store"`
}

// FeedConfig configures real-time subscriptions.
type FeedConfig struct {
	// DecodePolicy is "skip" or "fatal". Default: skip.
	DecodePolicy string `yaml:"decode_policy" json:"decode_policy"`

	// IdleTimeout is a duration such as "90s". Empty or "0" disables
	// the idle watchdog. Default: 0.
	IdleTimeout string `yaml:"idle_timeout" json:"idle_timeout"`

	// MaxRecordSize bounds one stream record in bytes. Default: 1 MiB.
	MaxRecordSize int `yaml:"max_record_size" json:"max_record_size"`
}

// ArchiveConfig configures tail --archive.
type ArchiveConfig struct {
	// Compression is "none", "lz4", or "zstd". Default: zstd.
	Compression string `yaml:"compression" json:"compression"`
}

// RenderConfig configures terminal output.
type RenderConfig struct {
	// Width is the wrap width. Zero means the terminal width.
	Width int `yaml:"width" json:"width"`

	// Style is "auto", "color", or "plain". Default: auto.
	Style string `yaml:"style" json:"style"`
}

// StoreConfig configures the local message cache.
type StoreConfig struct {
	// Path is the SQLite database file. Empty disables the cache.
	Path string `yaml:"path" json:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}

	return &Config{
		APIURL:      "https://api.gitter.im/v1",
		StreamURL:   "https://stream.gitter.im/v1",
		SessionFile: filepath.Join(configDir, "gitter", "session.json"),
		Feed: FeedConfig{
			DecodePolicy:  "skip",
			MaxRecordSize: feed.DefaultMaxRecordSize,
		},
		Archive: ArchiveConfig{Compression: "zstd"},
		Render:  RenderConfig{Style: "auto"},
	}
}

// Resolve loads the file named by path, or by GITTER_CONFIG when path is
// empty. With neither set it returns Default.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvironmentVariable)
	}
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	return LoadFile(path)
}

// Load loads the file named by GITTER_CONFIG. Unlike Resolve it fails
// when the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your gitter config file, or use --config", EnvironmentVariable)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path over the defaults, expands
// path variables, and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("config: loading %s: %w", path, err)
	}
	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// loadFile merges one file into c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	case ".json", ".jsonc":
		return json.Unmarshal(jsonc.ToJSON(data), c)
	default:
		return fmt.Errorf("unsupported config format %q (want .yaml, .yml, .json, or .jsonc)", filepath.Ext(path))
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	c.SessionFile = expandVars(c.SessionFile)
	c.IdentityFile = expandVars(c.IdentityFile)
	c.Store.Path = expandVars(c.Store.Path)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	for _, field := range []struct{ name, value string }{
		{"api_url", c.APIURL},
		{"stream_url", c.StreamURL},
	} {
		parsed, err := url.Parse(field.value)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an http or https URL, got %q", field.name, field.value))
		}
	}

	if c.SessionFile == "" {
		errs = append(errs, fmt.Errorf("session_file is required"))
	}

	if _, err := feed.ParseDecodePolicy(c.Feed.DecodePolicy); err != nil {
		errs = append(errs, fmt.Errorf("feed.decode_policy must be one of: skip, fatal"))
	}
	if _, err := c.Feed.Timeout(); err != nil {
		errs = append(errs, err)
	}
	if c.Feed.MaxRecordSize < 0 {
		errs = append(errs, fmt.Errorf("feed.max_record_size must not be negative"))
	}

	if !contains([]string{"none", "lz4", "zstd"}, c.Archive.Compression) {
		errs = append(errs, fmt.Errorf("archive.compression must be one of: none, lz4, zstd"))
	}

	if c.Render.Width < 0 {
		errs = append(errs, fmt.Errorf("render.width must not be negative"))
	}
	if !contains([]string{"auto", "color", "plain"}, c.Render.Style) {
		errs = append(errs, fmt.Errorf("render.style must be one of: auto, color, plain"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Policy returns the parsed decode policy.
func (f FeedConfig) Policy() feed.DecodePolicy {
	policy, _ := feed.ParseDecodePolicy(f.DecodePolicy)
	return policy
}

// Timeout returns the parsed idle timeout.
func (f FeedConfig) Timeout() (time.Duration, error) {
	if f.IdleTimeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(f.IdleTimeout)
	if err != nil {
		return 0, fmt.Errorf("feed.idle_timeout: %w", err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("feed.idle_timeout must not be negative")
	}
	return timeout, nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
