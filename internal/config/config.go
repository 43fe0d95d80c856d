package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultLogLevel     = "info"

	minPollInterval = 10 * time.Millisecond
	maxPollInterval = 2 * time.Second

	configDirName  = "lyrical"
	configFileName = "config.yaml"
)

type Config struct {
	MprisService string        `yaml:"mpris_service"`
	SyncOffset   float64       `yaml:"sync_offset"`
	HideHeader   bool          `yaml:"hide_header"`
	PollInterval time.Duration `yaml:"poll_interval"`
	LogLevel     string        `yaml:"log_level"`
	LogFile      string        `yaml:"log_file"`
}

func Default() *Config {
	return &Config{
		PollInterval: DefaultPollInterval,
		LogLevel:     DefaultLogLevel,
		LogFile:      defaultLogFile(),
	}
}

// Load builds the configuration from defaults, then the YAML file, then the
// environment (a .env file in the working directory is read first). An empty
// path means the default location, which may be absent.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		err := cfg.mergeFile(path)
		if err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
			return nil, err
		}
	}

	cfg.mergeEnv()

	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/lyrical/config.yaml, falling back to ~/.config.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, configDirName, configFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", configDirName, configFileName)
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func (c *Config) mergeEnv() {
	c.MprisService = getEnvOrDefault("LYRICAL_MPRIS_SERVICE", c.MprisService)
	c.LogLevel = getEnvOrDefault("LYRICAL_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnvOrDefault("LYRICAL_LOG_FILE", c.LogFile)

	if raw := os.Getenv("SYNC_OFFSET"); raw != "" {
		if offset, err := strconv.ParseFloat(raw, 64); err == nil {
			c.SyncOffset = offset
		}
	}

	if raw := os.Getenv("HIDE_HEADER"); raw != "" {
		c.HideHeader = raw == "1" || raw == "true" || raw == "yes"
	}

	if raw := os.Getenv("LYRICAL_POLL_INTERVAL"); raw != "" {
		if interval, err := time.ParseDuration(raw); err == nil {
			c.PollInterval = interval
		}
	}
}

func (c *Config) Validate() error {
	if c.PollInterval < minPollInterval || c.PollInterval > maxPollInterval {
		return fmt.Errorf("poll_interval must be between %s and %s, got %s", minPollInterval, maxPollInterval, c.PollInterval)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}

	return nil
}

// defaultLogFile keeps logs out of the terminal while the follower owns it.
func defaultLogFile() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, configDirName, "lyrical.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", configDirName, "lyrical.log")
}

func getEnvOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
