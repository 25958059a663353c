package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config holds the global minish configuration.
type Config struct {
	Prompt  PromptConfig  `yaml:"prompt"`
	History HistoryConfig `yaml:"history"`
	Exec    ExecConfig    `yaml:"exec"`
	Audit   AuditConfig   `yaml:"audit"`
}

// PromptConfig controls the interactive prompt.
type PromptConfig struct {
	Color bool `yaml:"color"`
}

// HistoryConfig controls the persistent command history.
type HistoryConfig struct {
	Path string `yaml:"path" validate:"required"`
	Size int    `yaml:"size" validate:"gte=1,lte=100000"`
}

// ExecConfig selects how external programs are started.
type ExecConfig struct {
	Backend string `yaml:"backend" validate:"oneof=exec spawn"`
}

// AuditConfig controls the journal of executed lines.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

// DefaultHistorySize is the number of lines kept when none is configured.
const DefaultHistorySize = 100

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Prompt: PromptConfig{Color: true},
		History: HistoryConfig{
			Path: filepath.Join(home, ".shell_history"),
			Size: DefaultHistorySize,
		},
		Exec: ExecConfig{Backend: "exec"},
		Audit: AuditConfig{
			Path: filepath.Join(home, ".local", "share", "minish", "audit.jsonl"),
		},
	}
}

// Load reads the config from the standard location
// (~/.config/minish/config.yaml). If the file doesn't exist, returns the
// default config.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from the given path on the OS filesystem.
func LoadFrom(path string) (*Config, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs reads the config from path on fs. Fields absent from the file keep
// their defaults.
func LoadFs(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.History.Path = expandHome(cfg.History.Path)
	cfg.Audit.Path = expandHome(cfg.Audit.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for semantic errors. Field names in
// errors use their YAML keys.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})
	return validate.Struct(c)
}

// ConfigPath returns the standard config file path.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "minish", "config.yaml"), nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
