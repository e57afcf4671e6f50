package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gostat/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1e8, cfg.ConditionLimit)
	assert.Equal(t, 1e-9, cfg.ProportionTolerance)
	assert.Equal(t, 1.0, cfg.PriorConcentration)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GOSTAT_CONDITION_LIMIT", "1e6")
	t.Setenv("GOSTAT_PRIOR_CONCENTRATION", "0.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1e6, cfg.ConditionLimit)
	assert.Equal(t, 0.5, cfg.PriorConcentration)
	// Unset keys keep their defaults.
	assert.Equal(t, 1e-9, cfg.ProportionTolerance)
}

func TestLoad_ParseFailure(t *testing.T) {
	t.Setenv("GOSTAT_CONDITION_LIMIT", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInternalError, errors.GetCode(err))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"condition limit too small", func(c *Config) { c.ConditionLimit = 1 }},
		{"zero proportion tolerance", func(c *Config) { c.ProportionTolerance = 0 }},
		{"huge proportion tolerance", func(c *Config) { c.ProportionTolerance = 0.5 }},
		{"non-positive prior", func(c *Config) { c.PriorConcentration = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
