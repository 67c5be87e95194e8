// Package config loads talentdesk settings from talentdesk.toml, a .env
// file and TD_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/store"
)

const (
	// FileName is the config file looked up in the workspace directory.
	FileName = "talentdesk.toml"

	// EnvPrefix prefixes every environment override, e.g. TD_SYNC_INTERVAL.
	EnvPrefix = "TD"
)

// Config is the full application configuration.
type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Log       LogConfig       `mapstructure:"log"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Team      TeamConfig      `mapstructure:"team"`

	// Dir is the directory the config was loaded from. Relative paths
	// are resolved against it.
	Dir string `mapstructure:"-"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type SyncConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Reconcile bool          `mapstructure:"reconcile"`
	Watch     bool          `mapstructure:"watch"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type DashboardConfig struct {
	Port int `mapstructure:"port"`
}

type TeamConfig struct {
	Members []string `mapstructure:"members"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", store.DriverSQLite)
	v.SetDefault("store.path", filepath.Join(".talentdesk", "talentdesk.db"))
	v.SetDefault("sync.interval", 30*time.Second)
	v.SetDefault("sync.reconcile", true)
	v.SetDefault("sync.watch", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("dashboard.port", 8080)
	v.SetDefault("team.members", []string(schema.DefaultTeam))
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	cfg.Dir = dir
	return cfg
}

// Load reads configuration for the workspace at dir. A missing config file
// or .env file is not an error.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Dir = dir
	cfg.Team.Members = splitMembers(cfg.Team.Members)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitMembers accepts both a TOML array and a comma separated env value.
func splitMembers(in []string) []string {
	var out []string
	for _, m := range in {
		for _, part := range strings.Split(m, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks if the Config has valid field values.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case store.DriverSQLite, store.DriverBolt, store.DriverMemory:
	default:
		return fmt.Errorf("store.driver must be sqlite, bolt or memory (got %q)", c.Store.Driver)
	}
	if c.Store.Driver != store.DriverMemory && strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store.path is required")
	}
	if c.Sync.Interval < 0 {
		return fmt.Errorf("sync.interval must not be negative (got %s)", c.Sync.Interval)
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port out of range (got %d)", c.Dashboard.Port)
	}
	if len(c.Team.Members) == 0 {
		return errors.New("team.members must list at least one member")
	}
	return nil
}

// StorePath returns the store path resolved against the config directory.
func (c *Config) StorePath() string {
	return c.resolve(c.Store.Path)
}

// LogFile returns the log file path resolved against the config
// directory, or "" when logging to stderr.
func (c *Config) LogFile() string {
	if c.Log.File == "" {
		return ""
	}
	return c.resolve(c.Log.File)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// TeamMembers returns the configured team.
func (c *Config) TeamMembers() schema.Team {
	return schema.Team(c.Team.Members)
}

// fileConfig is the on-disk shape written by WriteFile.
type fileConfig struct {
	Store struct {
		Driver string `toml:"driver"`
		Path   string `toml:"path"`
	} `toml:"store"`
	Sync struct {
		Interval  string `toml:"interval"`
		Reconcile bool   `toml:"reconcile"`
		Watch     bool   `toml:"watch"`
	} `toml:"sync"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
		File   string `toml:"file"`
	} `toml:"log"`
	Dashboard struct {
		Port int `toml:"port"`
	} `toml:"dashboard"`
	Team struct {
		Members []string `toml:"members"`
	} `toml:"team"`
}

// WriteFile writes cfg as TOML to path. An existing file is left alone
// unless force is set.
func WriteFile(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	var fc fileConfig
	fc.Store.Driver = cfg.Store.Driver
	fc.Store.Path = cfg.Store.Path
	fc.Sync.Interval = cfg.Sync.Interval.String()
	fc.Sync.Reconcile = cfg.Sync.Reconcile
	fc.Sync.Watch = cfg.Sync.Watch
	fc.Log.Level = cfg.Log.Level
	fc.Log.Format = cfg.Log.Format
	fc.Log.File = cfg.Log.File
	fc.Dashboard.Port = cfg.Dashboard.Port
	fc.Team.Members = cfg.Team.Members

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	// #nosec G304 - controlled path from CLI
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString("# talentdesk configuration\n\n"); err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(fc); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return f.Close()
}
