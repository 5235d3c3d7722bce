// Package config handles configuration loading for elfpeek.
// Configuration is loaded from:
// 1. ~/.config/elfpeek/config.yaml (user-level)
// 2. .elfpeek.yaml in the working directory (project-level override)
// 3. Environment variables (highest priority)
//
// Command-line flags override all of these; that merge happens in the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/elfpeek/internal/report"
)

// ProjectFile is the project-level config file name.
const ProjectFile = ".elfpeek.yaml"

// Environment variables consulted by Load.
const (
	EnvDB     = "ELFPEEK_DB"
	EnvFormat = "ELFPEEK_FORMAT"
	EnvPolicy = "ELFPEEK_POLICY"
)

// Config is the main configuration structure.
type Config struct {
	// Format is the default output format (text, json, yaml)
	Format string `yaml:"format"`

	// DB is the inspection history database; empty disables recording
	DB string `yaml:"db"`

	// Policy is the default policy file for check
	Policy string `yaml:"policy"`

	// Sections are the info parts shown when no section flag is given
	Sections []string `yaml:"sections"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Format:   string(report.FormatText),
		Sections: []string{"file-header"},
	}
}

// Load reads configuration from standard locations and merges with defaults.
// Priority (highest to lowest):
// 1. Environment variables
// 2. Project config (./.elfpeek.yaml)
// 3. User config (~/.config/elfpeek/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	userPath, err := UserConfigPath()
	if err != nil {
		userPath = ""
	}
	return LoadFrom(userPath, ProjectFile, os.Getenv)
}

// LoadFrom is Load with explicit file locations and environment lookup.
// Missing files are skipped; an empty path is never read.
func LoadFrom(userPath, projectPath string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{userPath, projectPath} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg, getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// decode merges YAML into cfg, rejecting unknown fields. An empty file
// leaves cfg unchanged.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if _, err := report.ParseFormat(c.Format); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := report.ParseSections(c.Sections); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// SectionSelection returns the configured default info sections.
func (c *Config) SectionSelection() report.Sections {
	sel, _ := report.ParseSections(c.Sections)
	return sel
}

// UserConfigPath returns the path to the user configuration file.
func UserConfigPath() (string, error) {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "elfpeek", "config.yaml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "elfpeek", "config.yaml"), nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvDB); v != "" {
		cfg.DB = v
	}
	if v := getenv(EnvFormat); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	if v := getenv(EnvPolicy); v != "" {
		cfg.Policy = v
	}
}
