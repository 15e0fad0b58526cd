// Package config loads the layered knowhub configuration: the global file,
// then the vault's own file, then KNOWHUB_ environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/knowhub/internal/platform"
)

// FileName is the configuration file name inside a system directory.
const FileName = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. KNOWHUB_ADAPTER=sqlite.
const EnvPrefix = "KNOWHUB"

// Config is the effective configuration of a knowhub invocation.
type Config struct {
	Adapter    string `mapstructure:"adapter" yaml:"adapter"`
	Path       string `mapstructure:"path" yaml:"path"`
	Format     string `mapstructure:"format" yaml:"format"`
	SystemDir  string `mapstructure:"system_dir" yaml:"system_dir"`
	Versioning *bool  `mapstructure:"versioning" yaml:"versioning,omitempty"`
	ReadOnly   bool   `mapstructure:"read_only" yaml:"read_only"`
	AutoInit   bool   `mapstructure:"auto_init" yaml:"auto_init"`
	DevSafety  bool   `mapstructure:"dev_safety" yaml:"dev_safety"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`

	// Sources lists the files that contributed, in load order.
	Sources []string `mapstructure:"-" yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Adapter:   platform.AdapterFS,
		Path:      ".",
		Format:    "json",
		SystemDir: platform.SystemDirMarker,
		DevSafety: true,
		LogLevel:  "info",
	}
}

// GlobalPath returns ~/.knowhub/config.yaml, or "" without a home directory.
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, platform.SystemDirMarker, FileName)
}

// VaultPath returns the configuration file kept inside a vault.
func VaultPath(vault string) string {
	return filepath.Join(vault, platform.SystemDirMarker, FileName)
}

// Load reads the global file and the file of the vault at vault, in that
// order. Missing files are skipped.
func Load(vault string) (*Config, error) {
	var files []string
	if p := GlobalPath(); p != "" {
		files = append(files, p)
	}
	if vault != "" {
		files = append(files, VaultPath(vault))
	}
	return LoadFiles(files...)
}

// LoadFiles merges the given YAML files over the defaults; later files win.
// Environment variables override every file.
func LoadFiles(files ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	def := Default()
	v.SetDefault("adapter", def.Adapter)
	v.SetDefault("path", def.Path)
	v.SetDefault("format", def.Format)
	v.SetDefault("system_dir", def.SystemDir)
	v.SetDefault("read_only", def.ReadOnly)
	v.SetDefault("auto_init", def.AutoInit)
	v.SetDefault("dev_safety", def.DevSafety)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// No default, so AutomaticEnv alone would not surface it to Unmarshal.
	if err := v.BindEnv("versioning"); err != nil {
		return nil, err
	}

	var sources []string
	for _, path := range files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		sources = append(sources, path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Sources = sources
	return cfg, nil
}

// Level maps LogLevel to a slog level; unknown names are info.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Options translates the configuration into platform options.
func (c *Config) Options() []platform.Option {
	opts := []platform.Option{
		platform.WithAdapter(c.Adapter),
		platform.WithFormat(c.Format),
		platform.WithSystemDir(c.SystemDir),
		platform.WithReadOnly(c.ReadOnly),
		platform.WithAutoInit(c.AutoInit),
		platform.WithDevSafety(c.DevSafety),
	}
	if c.Versioning != nil {
		opts = append(opts, platform.WithVersioning(*c.Versioning))
	}
	return opts
}

// YAML renders the configuration as it would be written to a file.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Write stores cfg at path, creating parent directories.
func Write(path string, cfg *Config) error {
	data, err := cfg.YAML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
