package config

import "github.com/roach88/plotcheck/internal/expect"

// GetDefaults returns the built-in configuration values keyed by koanf path.
func GetDefaults() map[string]any {
	return map[string]any{
		"tolerance":            expect.DefaultTolerance,
		"min_unique_threshold": expect.DefaultMinUniqueThreshold,
		"fail_on_missing":      false,
		"sample_limit":         expect.DefaultSampleLimit,
		"format":               "text",
		"no_color":             false,
		"golden_dir":           "golden",
		"parallel":             4,
	}
}

// DefaultTemplate returns a commented project config file.
func DefaultTemplate() string {
	return `# plotcheck configuration

# Verification defaults (an expectation's own values win)
tolerance: 0.001                # Distance under which two values are equal (0 = exact)
min_unique_threshold: 2         # Distinct values a varying channel must show
fail_on_missing: false          # Abort when expected structure is absent
sample_limit: 5                 # Sample values listed per failed check

# Output
format: text                    # text | json
no_color: false                 # Disable ANSI colors

# plotcheck test
golden_dir: golden              # Report snapshots, relative to the scenarios directory
parallel: 4                     # Scenarios verified concurrently
`
}
