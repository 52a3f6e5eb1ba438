// Package config loads analyzer configuration from a YAML file, applying
// defaults for anything left unset.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked for in the repository root.
const DefaultFileName = ".codeatlas.yaml"

var (
	// ErrInvalidWorkers indicates a negative worker count.
	ErrInvalidWorkers = errors.New("workers must not be negative")

	// ErrInvalidTimeout indicates a negative timeout.
	ErrInvalidTimeout = errors.New("timeouts must not be negative")
)

// Config is the full analyzer configuration.
type Config struct {
	Scan      ScanConfig      `yaml:"scan"`
	Search    SearchConfig    `yaml:"search"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
}

// ScanConfig controls discovery and graph building.
type ScanConfig struct {
	// IncludePatterns are file globs to analyze. Empty means the built-in
	// source extensions.
	IncludePatterns []string `yaml:"include_patterns"`

	// ExcludePatterns are file globs to skip.
	ExcludePatterns []string `yaml:"exclude_patterns"`

	// IncludeHistory enables version-control enrichment.
	IncludeHistory bool `yaml:"include_history"`

	// Timeout bounds the whole scan.
	Timeout time.Duration `yaml:"timeout"`

	// FileTimeout bounds a single file's extraction.
	FileTimeout time.Duration `yaml:"file_timeout"`

	// Workers is the extraction pool size. Zero means automatic.
	Workers int `yaml:"workers"`

	// UseGitignore honors .gitignore entries during discovery.
	UseGitignore bool `yaml:"use_gitignore"`
}

// SearchConfig controls the ranker.
type SearchConfig struct {
	// DefaultMode is the mode used when none is given on the command line.
	DefaultMode string `yaml:"default_mode"`

	// Limit is the default result count.
	Limit int `yaml:"limit"`
}

// ArtifactsConfig controls artifact persistence.
type ArtifactsConfig struct {
	// Dir is the directory graph and index artifacts are written to,
	// relative to the repository root unless absolute.
	Dir string `yaml:"dir"`

	// Watch enables file watching for cache invalidation in long-lived
	// sessions.
	Watch bool `yaml:"watch"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			IncludeHistory: true,
			Timeout:        5 * time.Minute,
			FileTimeout:    10 * time.Second,
			UseGitignore:   true,
		},
		Search: SearchConfig{
			DefaultMode: "hybrid",
			Limit:       10,
		},
		Artifacts: ArtifactsConfig{
			Dir: ".codeatlas",
		},
	}
}

// Load reads the config file at path over the defaults. A missing file is
// not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Scan.Workers < 0 {
		return ErrInvalidWorkers
	}
	if c.Scan.Timeout < 0 || c.Scan.FileTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}
