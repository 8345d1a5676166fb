// Package config loads skyhawk settings from config.yaml and the environment.
//
// Lookup order: built-in defaults, then $XDG_CONFIG_HOME/skyhawk/config.yaml
// (or the path passed on the command line), then SKYHAWK_* variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName names the config and data directories
	AppName = "skyhawk"

	DraftBackendFile   = "file"
	DraftBackendRedis  = "redis"
	DraftBackendMemory = "memory"

	defaultLongSessionMinutes = 120
	defaultRemoteTimeout      = 10 * time.Second
	defaultRedisKey           = "skyhawk:builder_state"
)

// DraftConfig selects where the in-progress plan is kept
type DraftConfig struct {
	Backend string `yaml:"backend"`
	// Path is the draft file for the file backend
	Path string `yaml:"path,omitempty"`
}

// RedisConfig configures the redis draft backend
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db"`
	Key      string        `yaml:"key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Config holds the runtime configuration
type Config struct {
	DataDir string `yaml:"data_dir"`
	DBPath  string `yaml:"db_path"`

	// Coach is the name signed in at startup
	Coach string `yaml:"coach"`

	Draft DraftConfig `yaml:"draft"`
	Redis RedisConfig `yaml:"redis"`

	// LongSessionMinutes triggers the long session advisory
	LongSessionMinutes int           `yaml:"long_session_minutes"`
	RemoteTimeout      time.Duration `yaml:"remote_timeout"`

	Log LogConfig `yaml:"log"`
}

// LogConfig controls the log file
type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path,omitempty"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Coach: defaultCoach(),
		Draft: DraftConfig{Backend: DraftBackendFile},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			Key:     defaultRedisKey,
			Timeout: 2 * time.Second,
		},
		LongSessionMinutes: defaultLongSessionMinutes,
		RemoteTimeout:      defaultRemoteTimeout,
		Log:                LogConfig{Level: "info"},
	}
}

// Load reads the config file at path (or the default location when empty),
// applies env overrides and fills derived paths.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	if err := cfg.resolvePaths(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/skyhawk/config.yaml
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: resolve home: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppName, "config.yaml"), nil
}

func (c *Config) loadFile(path string, mustExist bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !mustExist {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.DataDir = envString("SKYHAWK_DATA_DIR", c.DataDir)
	c.DBPath = envString("SKYHAWK_DB_PATH", c.DBPath)
	c.Coach = envString("SKYHAWK_COACH", c.Coach)
	c.Draft.Backend = envString("SKYHAWK_DRAFT_BACKEND", c.Draft.Backend)
	c.Redis.Addr = envString("SKYHAWK_REDIS_ADDR", c.Redis.Addr)
	c.LongSessionMinutes = envInt("SKYHAWK_LONG_SESSION_MINUTES", c.LongSessionMinutes)
	c.Log.Level = envString("SKYHAWK_LOG_LEVEL", c.Log.Level)
}

func (c *Config) resolvePaths() error {
	if c.DataDir == "" {
		dir := os.Getenv("XDG_DATA_HOME")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("config: resolve home: %w", err)
			}
			dir = filepath.Join(home, ".local", "share")
		}
		c.DataDir = filepath.Join(dir, AppName)
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, AppName+".db")
	}
	if c.Draft.Path == "" {
		c.Draft.Path = filepath.Join(c.DataDir, "builder_state.json")
	}
	if c.Log.Path == "" {
		c.Log.Path = filepath.Join(c.DataDir, AppName+".log")
	}
	return nil
}

// Validate rejects settings the app cannot run with
func (c Config) Validate() error {
	switch c.Draft.Backend {
	case DraftBackendFile, DraftBackendRedis, DraftBackendMemory:
	default:
		return fmt.Errorf("config: unknown draft backend %q", c.Draft.Backend)
	}
	if c.Draft.Backend == DraftBackendRedis && strings.TrimSpace(c.Redis.Addr) == "" {
		return fmt.Errorf("config: redis draft backend needs redis.addr")
	}
	if c.LongSessionMinutes <= 0 {
		return fmt.Errorf("config: long_session_minutes must be positive, got %d", c.LongSessionMinutes)
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("config: remote_timeout must be positive")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	return nil
}

// EnsureDataDir creates the data directory
func (c Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("config: ensure data dir: %w", err)
	}
	return nil
}

func defaultCoach() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "coach"
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
