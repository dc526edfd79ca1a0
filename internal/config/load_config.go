package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppName names the configuration directory.
const AppName = "laravel-api-forge"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Release: Release{
			Owner:  "goez-tools",
			Repo:   "laravel-api-forge",
			APIURL: "https://api.github.com",
		},
		Defaults: Defaults{Redis: true, RBAC: true, Modules: true},
		Hooks:    Hooks{TestProcesses: 10},
		Commands: Commands{Timeout: 300 * time.Second},
		Formatter: Formatter{
			Path:    "vendor/bin/pint",
			Pattern: "**/*.php",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/laravel-api-forge/config.yaml,
// falling back to the OS user config directory.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return ""
		}
		base = dir
	}
	return filepath.Join(base, AppName, "config.yaml")
}

// LoadConfig reads the YAML file at configFile on top of Default().
// A missing file is not an error. Environment overrides are applied last:
//   - FORGE_RELEASE_REPO=owner/repo replaces the release repository.
func LoadConfig(configFile string) (Config, error) {
	cfg := Default()

	if configFile != "" {
		raw, err := os.ReadFile(configFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Optional file.
		case err != nil:
			return Config{}, fmt.Errorf("failed to read %s: %w", configFile, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to unmarshal %s: %w", configFile, err)
			}
		}
	}

	if repo := os.Getenv("FORGE_RELEASE_REPO"); repo != "" {
		owner, name, ok := strings.Cut(repo, "/")
		if !ok || owner == "" || name == "" {
			return Config{}, fmt.Errorf("FORGE_RELEASE_REPO must be owner/repo, got %q", repo)
		}
		cfg.Release.Owner, cfg.Release.Repo = owner, name
	}

	cfg.fillZeroValues()
	return cfg, nil
}

// fillZeroValues restores defaults for fields a config file explicitly zeroed.
func (c *Config) fillZeroValues() {
	def := Default()
	if c.Release.Owner == "" || c.Release.Repo == "" {
		c.Release.Owner, c.Release.Repo = def.Release.Owner, def.Release.Repo
	}
	if c.Release.APIURL == "" {
		c.Release.APIURL = def.Release.APIURL
	}
	if c.Hooks.TestProcesses <= 0 {
		c.Hooks.TestProcesses = def.Hooks.TestProcesses
	}
	if c.Commands.Timeout <= 0 {
		c.Commands.Timeout = def.Commands.Timeout
	}
	if c.Formatter.Path == "" {
		c.Formatter.Path = def.Formatter.Path
	}
	if c.Formatter.Pattern == "" {
		c.Formatter.Pattern = def.Formatter.Pattern
	}
}
