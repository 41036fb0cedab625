// Package config provides CLI configuration management for the mscribe
// command-line tool. It supports loading configuration from YAML files,
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultServerURL    = "https://captions.meetscribe.dev"
	DefaultTimeout      = 30 * time.Second
	DefaultOutputFormat = OutputFormatText
	DefaultConfigDir    = ".mscribe"
	DefaultConfigFile   = "config.yaml"
)

// ClipboardConfig holds clipboard delivery settings.
type ClipboardConfig struct {
	// Command overrides the platform default clipboard command.
	Command string `yaml:"command,omitempty"`

	// Args are extra arguments passed to the clipboard command.
	Args []string `yaml:"args,omitempty"`
}

// CacheConfig holds Redis record-cache connection settings. The cache is
// disabled unless Addr is set.
type CacheConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string `yaml:"addr,omitempty"`

	// Password is the Redis password, if required.
	Password string `yaml:"password,omitempty"`

	// DB is the Redis database number.
	DB int `yaml:"db,omitempty"`

	// TTL is how long cached meeting records stay valid.
	TTL time.Duration `yaml:"-"`
}

// Enabled reports whether the record cache is configured.
func (c *CacheConfig) Enabled() bool {
	return c != nil && c.Addr != ""
}

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// ServerURL is the base URL of the captions API.
	ServerURL string `yaml:"server_url"`

	// Timeout is the default timeout for API requests.
	Timeout time.Duration `yaml:"timeout"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`

	// LogJSON switches logs from console format to JSON.
	LogJSON bool `yaml:"log_json,omitempty"`

	// Clipboard contains clipboard delivery settings.
	Clipboard ClipboardConfig `yaml:"clipboard,omitempty"`

	// Cache contains Redis record-cache settings.
	Cache *CacheConfig `yaml:"cache,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		ServerURL:    DefaultServerURL,
		Timeout:      DefaultTimeout,
		OutputFormat: DefaultOutputFormat,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $MSCRIBE_CONFIG_DIR if set, otherwise ~/.mscribe
func ConfigDir() (string, error) {
	if dir := os.Getenv("MSCRIBE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.mscribe/config.yaml or $MSCRIBE_CONFIG_DIR/config.yaml)
// 3. Environment variables (MSCRIBE_SERVER_URL, MSCRIBE_TIMEOUT, ...)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadConfigFile loads the CLI configuration from an explicit file path,
// still applying environment variable overrides. The file must exist.
func LoadConfigFile(path string) (*CLIConfig, error) {
	cfg := DefaultConfig()

	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// configFile mirrors CLIConfig with durations as strings for YAML.
type configFile struct {
	ServerURL    string          `yaml:"server_url,omitempty"`
	Timeout      string          `yaml:"timeout,omitempty"`
	OutputFormat OutputFormat    `yaml:"output_format,omitempty"`
	Debug        bool            `yaml:"debug,omitempty"`
	LogJSON      bool            `yaml:"log_json,omitempty"`
	Clipboard    ClipboardConfig `yaml:"clipboard,omitempty"`
	Cache        *cacheFile      `yaml:"cache,omitempty"`
}

type cacheFile struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	TTL      string `yaml:"ttl,omitempty"`
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.ServerURL != "" {
		cfg.ServerURL = fileCfg.ServerURL
	}
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	cfg.Debug = fileCfg.Debug
	cfg.LogJSON = fileCfg.LogJSON
	cfg.Clipboard = fileCfg.Clipboard

	if fileCfg.Cache != nil {
		cache := &CacheConfig{
			Addr:     fileCfg.Cache.Addr,
			Password: fileCfg.Cache.Password,
			DB:       fileCfg.Cache.DB,
		}
		if fileCfg.Cache.TTL != "" {
			ttl, err := time.ParseDuration(fileCfg.Cache.TTL)
			if err != nil {
				return fmt.Errorf("parsing cache ttl: %w", err)
			}
			cache.TTL = ttl
		}
		cfg.Cache = cache
	}

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("MSCRIBE_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}

	if v := os.Getenv("MSCRIBE_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		}
	}

	if v := os.Getenv("MSCRIBE_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("MSCRIBE_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}

	if v := os.Getenv("MSCRIBE_LOG_JSON"); v == "true" || v == "1" {
		cfg.LogJSON = true
	}

	if v := os.Getenv("MSCRIBE_CLIPBOARD_COMMAND"); v != "" {
		cfg.Clipboard.Command = v
		cfg.Clipboard.Args = nil
	}

	// Cache environment variables.
	if v := os.Getenv("MSCRIBE_CACHE_ADDR"); v != "" {
		if cfg.Cache == nil {
			cfg.Cache = &CacheConfig{}
		}
		cfg.Cache.Addr = v
	}
	if cfg.Cache != nil {
		if v := os.Getenv("MSCRIBE_CACHE_PASSWORD"); v != "" {
			cfg.Cache.Password = v
		}
		if v := os.Getenv("MSCRIBE_CACHE_DB"); v != "" {
			if db, err := strconv.Atoi(v); err == nil {
				cfg.Cache.DB = db
			}
		}
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	fileCfg := configFile{
		ServerURL:    cfg.ServerURL,
		Timeout:      cfg.Timeout.String(),
		OutputFormat: cfg.OutputFormat,
		Debug:        cfg.Debug,
		LogJSON:      cfg.LogJSON,
		Clipboard:    cfg.Clipboard,
	}
	if cfg.Cache != nil {
		fileCfg.Cache = &cacheFile{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		}
		if cfg.Cache.TTL > 0 {
			fileCfg.Cache.TTL = cfg.Cache.TTL.String()
		}
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
