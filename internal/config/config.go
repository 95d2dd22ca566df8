// Package config provides layered configuration for plotcheck using koanf.
//
// Values are resolved in this order, later layers winning:
//
//  1. Built-in defaults
//  2. Project file: .plotcheck.yaml, .plotcheck.yml or .plotcheck.json in
//     the project directory, or an explicit --config path
//  3. Environment variables prefixed with PLOTCHECK_ (PLOTCHECK_TOLERANCE,
//     PLOTCHECK_FAIL_ON_MISSING, ...)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/roach88/plotcheck/internal/expect"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "PLOTCHECK_"

// ProjectFiles are the project config file names, in lookup order.
var ProjectFiles = []string{".plotcheck.yaml", ".plotcheck.yml", ".plotcheck.json"}

// Config holds plotcheck settings.
type Config struct {
	// Verification defaults merged into every expectation.
	Tolerance          float64 `koanf:"tolerance" validate:"gte=0"`
	MinUniqueThreshold int     `koanf:"min_unique_threshold" validate:"min=1"`
	FailOnMissing      bool    `koanf:"fail_on_missing"`
	SampleLimit        int     `koanf:"sample_limit" validate:"min=1,max=100"`

	// Output settings.
	Format  string `koanf:"format" validate:"oneof=text json"`
	NoColor bool   `koanf:"no_color"`

	// GoldenDir holds report snapshots for `plotcheck test`, relative to the
	// scenarios directory unless absolute.
	GoldenDir string `koanf:"golden_dir" validate:"required"`

	// Parallel is the number of scenarios verified concurrently.
	Parallel int `koanf:"parallel" validate:"min=1,max=64"`
}

// Defaults returns the verification defaults for the harness.
func (c *Config) Defaults() expect.Defaults {
	return expect.Defaults{
		MinUniqueThreshold: c.MinUniqueThreshold,
		Tolerance:          c.Tolerance,
		FailOnMissing:      c.FailOnMissing,
		SampleLimit:        c.SampleLimit,
	}
}

// LoadOptions configures Load.
type LoadOptions struct {
	// ProjectDir is searched for ProjectFiles. Defaults to ".".
	ProjectDir string

	// ConfigPath overrides the project file lookup. The file must exist.
	ConfigPath string
}

// Load resolves the configuration.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	loadDefaults(k)

	source, err := loadProjectConfig(k, opts)
	if err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if source == "" {
		source = "config"
	}
	if err := Validate(&cfg, source); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadProjectConfig loads the explicit config path, or the first project
// file found in the project directory, and returns the loaded path.
func loadProjectConfig(k *koanf.Koanf, opts LoadOptions) (string, error) {
	path := opts.ConfigPath
	if path == "" {
		dir := opts.ProjectDir
		if dir == "" {
			dir = "."
		}
		for _, name := range ProjectFiles {
			candidate := filepath.Join(dir, name)
			if fileExists(candidate) {
				path = candidate
				break
			}
		}
		if path == "" {
			return "", nil
		}
	} else if !fileExists(path) {
		return "", &ValidationError{FilePath: path, Message: "config file not found"}
	}

	var parser koanf.Parser = yaml.Parser()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		parser = json.Parser()
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return "", &ValidationError{FilePath: path, Message: err.Error()}
	}
	return path, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// envTransform converts environment variable names to config keys.
// Example: PLOTCHECK_MIN_UNIQUE_THRESHOLD -> min_unique_threshold
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}
