// Package config holds the checker configuration read from stc.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"martianoff/stc/internal/extension"
)

// FileName is the configuration file looked up by FindConfig.
const FileName = "stc.yaml"

// MaxPassesLimit bounds the number of passes over a loop or closure whose
// shared variables change type.
const MaxPassesLimit = 2

// Config holds configuration for a checker run.
type Config struct {
	// Debug reports diagnostics at synthetic positions too.
	// Defaults to STC_DEBUG.
	Debug bool `yaml:"debug"`

	// MaxPasses caps re-visits of loops and closures. Defaults to 2.
	MaxPasses int `yaml:"max_passes"`

	// Extensions lists the extension modules made available to method
	// resolution. Defaults to every built-in module.
	Extensions []string `yaml:"extensions"`

	// LogLevel is a logrus level name. Defaults to "warning".
	LogLevel string `yaml:"log_level"`

	// SearchPaths are the directories searched for imported units.
	// Defaults to STC_PATH, otherwise the current directory.
	SearchPaths []string `yaml:"search_paths"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Debug:       defaultDebug(),
		MaxPasses:   MaxPassesLimit,
		Extensions:  extension.BuiltinNames(),
		LogLevel:    logrus.WarnLevel.String(),
		SearchPaths: defaultSearchPaths(),
	}
}

// defaultDebug reads STC_DEBUG; unparsable values count as false.
func defaultDebug() bool {
	v, err := strconv.ParseBool(os.Getenv("STC_DEBUG"))
	return err == nil && v
}

// defaultSearchPaths splits STC_PATH on the list separator, falling back to
// the current directory.
func defaultSearchPaths() []string {
	env := os.Getenv("STC_PATH")
	if env == "" {
		return []string{"."}
	}
	var out []string
	for _, p := range filepath.SplitList(env) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"."}
	}
	return out
}

// LoadConfig reads and parses a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses configuration content on top of the defaults.
// The path argument is used for error messages and to resolve relative
// search paths.
func ParseConfig(data []byte, path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, p := range cfg.SearchPaths {
		if !filepath.IsAbs(p) {
			cfg.SearchPaths[i] = filepath.Join(dir, p)
		}
	}
	return cfg, nil
}

// FindConfig searches for stc.yaml starting from dir and walking up to the
// filesystem root. It returns an empty path when none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	if c.MaxPasses < 1 || c.MaxPasses > MaxPassesLimit {
		return fmt.Errorf("max_passes must be between 1 and %d, got %d", MaxPassesLimit, c.MaxPasses)
	}
	seen := make(map[string]bool)
	for i, name := range c.Extensions {
		if _, ok := extension.Builtin(name); !ok {
			return fmt.Errorf("extensions[%d]: unknown extension module '%s'", i, name)
		}
		if seen[name] {
			return fmt.Errorf("extensions[%d]: duplicate extension module '%s'", i, name)
		}
		seen[name] = true
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the configured log level, warning when it does not parse.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}

// Registry builds the extension registry for the configured modules.
func (c *Config) Registry() (*extension.Registry, error) {
	return extension.New(c.Extensions...)
}
