package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lazypower/habits/internal/store"
)

// FileName is the config file looked up in the data directory when no
// explicit path is given.
const FileName = "config.yaml"

// LogFileName is the rotated JSON log inside <data dir>/logs.
const LogFileName = "habits.log"

// Config holds all habits configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Decay    DecayConfig    `yaml:"decay"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // empty means <data dir>/db.sqlite
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // default <data dir>/logs/habits.log
}

// DecayConfig controls the periodic inactivity check run by `serve`.
// A zero Interval disables it.
type DecayConfig struct {
	Interval    time.Duration `yaml:"interval"`
	LeagueAware bool          `yaml:"league_aware"`
	Penalty     int16         `yaml:"penalty"` // per tick when not league aware
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Log: LogConfig{
			Level: "info",
		},
		Decay: DecayConfig{
			Interval:    0,
			LeagueAware: true,
			Penalty:     20,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"tauri://localhost", "http://localhost:*", "http://127.0.0.1:*"},
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// OverrideFromEnv applies HABITS_* environment variables over c. A value
// that does not parse is an error rather than silently ignored.
func (c *Config) OverrideFromEnv() error {
	if bind := os.Getenv("HABITS_BIND"); bind != "" {
		c.Server.Bind = bind
	}
	if port := os.Getenv("HABITS_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("HABITS_PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}
	if path := os.Getenv("HABITS_DB"); path != "" {
		c.Database.Path = path
	}
	if level := os.Getenv("HABITS_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if interval := os.Getenv("HABITS_DECAY_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("HABITS_DECAY_INTERVAL %q: %w", interval, err)
		}
		c.Decay.Interval = d
	}
	return nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Decay.Interval < 0 {
		return fmt.Errorf("decay.interval must not be negative")
	}
	if c.Decay.Penalty < 0 {
		return fmt.Errorf("decay.penalty must not be negative")
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// ApplyDataDir points every unset path at dir.
func (c *Config) ApplyDataDir(dir string) {
	if dir == "" {
		return
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(dir, store.DBFileName)
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(dir, "logs", LogFileName)
	}
}

// DBPath returns the configured database path, falling back to the
// platform default.
func (c *Config) DBPath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	return store.DefaultDBPath()
}

// DefaultPath returns the config file path inside the default data dir.
func DefaultPath() (string, error) {
	dir, err := store.DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}
