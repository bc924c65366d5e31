// Package config loads the small amount of process-wide configuration
// this module allows: the worker pool size, the default significance
// threshold, and the template catalogue's per-length generation cap. It
// follows the entropy gateway's own env-var configuration idiom this
// package was adapted from: typed defaults, explicit override parsing,
// then a validation pass that returns a descriptive error rather than
// panicking.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the process-wide settings governing test execution.
type Config struct {
	// MaxThreads is the worker pool size used by the TestRunner's
	// concurrent test execution. Zero means "choose a sane default on
	// first use" per the concurrency model. The block-partitioned tests
	// do not use it; they split their blocks across a fixed number of
	// goroutines.
	MaxThreads int

	// SignificanceThreshold is the default "passed" predicate threshold;
	// tests themselves never apply it.
	SignificanceThreshold float64

	// MaxTemplatesPerLength is a cap on how many aperiodic templates a
	// catalogue generates per length (templates.New's maxPerLength). Zero
	// means unlimited. Load reads and validates it, but nothing passes it
	// on: runner.New always builds an uncapped catalogue.
	MaxTemplatesPerLength int
}

// Default returns the hard-coded defaults before any environment
// override is applied.
func Default() Config {
	return Config{
		MaxThreads:            0,
		SignificanceThreshold: 0.01,
		MaxTemplatesPerLength: 10000,
	}
}

// Load builds a Config from the hard defaults, then environment variable
// overrides, then validates the result.
func Load() (Config, error) {
	cfg := Default()

	if v, ok := os.LookupEnv("STS_MAX_THREADS"); ok {
		parsed, err := ParsePositiveEnvInt("STS_MAX_THREADS", v)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxThreads = parsed
	}

	if v, ok := os.LookupEnv("STS_SIGNIFICANCE_THRESHOLD"); ok {
		parsed, err := strconv.ParseFloat(cleanEnvValue(v), 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STS_SIGNIFICANCE_THRESHOLD %q: %w", v, err)
		}
		cfg.SignificanceThreshold = parsed
	}

	if v, ok := os.LookupEnv("STS_MAX_TEMPLATES_PER_LENGTH"); ok {
		parsed, err := ParsePositiveEnvInt("STS_MAX_TEMPLATES_PER_LENGTH", v)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxTemplatesPerLength = parsed
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxThreads < 0 {
		return fmt.Errorf("max threads must be >= 0, got %d", c.MaxThreads)
	}
	if c.SignificanceThreshold <= 0 || c.SignificanceThreshold >= 1 {
		return fmt.Errorf("significance threshold must be in (0, 1), got %f", c.SignificanceThreshold)
	}
	if c.MaxTemplatesPerLength < 0 {
		return fmt.Errorf("max templates per length must be >= 0, got %d", c.MaxTemplatesPerLength)
	}
	return nil
}

// GetEnvDefault returns the environment variable's value, or def if it is
// unset or empty.
func GetEnvDefault(key, def string) string {
	v := cleanEnvValue(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// ParsePositiveEnvInt parses raw as a positive (or zero) integer, erroring
// with the offending variable name on failure.
func ParsePositiveEnvInt(name, raw string) (int, error) {
	v, err := strconv.Atoi(cleanEnvValue(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must be >= 0, got %d", name, v)
	}
	return v, nil
}

// cleanEnvValue trims whitespace and surrounding quotes the way
// environment variables are commonly supplied from .env files or shell
// exports.
func cleanEnvValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"'`)
	return v
}
