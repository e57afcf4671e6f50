package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"gostat/internal/errors"
)

// Config holds the numeric knobs shared by the engines. Every field has a
// default that matches the reference computations, so Load is only needed
// when a deployment wants to tighten or loosen a tolerance.
type Config struct {
	// ConditionLimit is the largest acceptable condition number for X'X
	// before a design is declared rank deficient.
	ConditionLimit float64

	// ProportionTolerance bounds |sum(expected proportions) - 1| in the
	// goodness-of-fit test.
	ProportionTolerance float64

	// PriorConcentration is the symmetric Dirichlet parameter for the
	// Bayes factor. 1 is the Gunel-Dickey default; 0.5 gives the
	// Jeffreys variant.
	PriorConcentration float64
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ConditionLimit:      1e8,
		ProportionTolerance: 1e-9,
		PriorConcentration:  1,
	}
}

// Load reads configuration from a .env file (best effort) and environment
// variables, falling back to defaults for anything unset.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional; env vars win either way

	cfg := Default()

	var err error
	if cfg.ConditionLimit, err = loadFloat("GOSTAT_CONDITION_LIMIT", cfg.ConditionLimit); err != nil {
		return nil, err
	}
	if cfg.ProportionTolerance, err = loadFloat("GOSTAT_PROPORTION_TOLERANCE", cfg.ProportionTolerance); err != nil {
		return nil, err
	}
	if cfg.PriorConcentration, err = loadFloat("GOSTAT_PRIOR_CONCENTRATION", cfg.PriorConcentration); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that would make the engines misbehave.
func (c *Config) Validate() error {
	if c.ConditionLimit <= 1 {
		return errors.ConfigInvalid("condition limit must exceed 1")
	}
	if c.ProportionTolerance <= 0 || c.ProportionTolerance >= 0.5 {
		return errors.ConfigInvalid("proportion tolerance must be in (0, 0.5)")
	}
	if c.PriorConcentration <= 0 {
		return errors.ConfigInvalid("prior concentration must be positive")
	}
	return nil
}

func loadFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse %s", key)
	}
	return v, nil
}
