/*
Package factory provides JSON to Go simulation-config conversion.

PURPOSE:
  Converts JSON simulation definitions into billing policies and cycle
  configuration. This lets analysts switch the simulated policy or the
  billing-cycle boundary without code changes - configs live in files or
  request bodies, the factory produces the proper Go values.

JSON SCHEMA:
  {
    "policy": "corrected",        // "legacy" | "corrected"
    "cycle_start_day": 1,         // 1-28, first day of a billing cycle
    "workers": 4                  // batch simulation parallelism
  }

DEFAULTS:
  Omitted fields get the production defaults: corrected policy, calendar
  months, 4 workers.

USAGE:
  cfg, err := factory.ParseConfig(jsonStr)
  policy := cfg.Policy()
  runner := simulation.NewRunner(repo, cfg.CycleConfig())

SEE ALSO:
  - billing/policy.go: The policy values produced here
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/allocation-engine/billing"
)

// =============================================================================
// SIMULATION CONFIG
// =============================================================================

// PolicyName selects which allocation policy a simulation runs.
type PolicyName string

const (
	PolicyLegacy    PolicyName = "legacy"
	PolicyCorrected PolicyName = "corrected"
)

// SimulationConfig is the parsed, validated configuration.
type SimulationConfig struct {
	PolicyName    PolicyName `json:"policy"`
	CycleStartDay int        `json:"cycle_start_day"`
	Workers       int        `json:"workers"`
}

// ParseConfig parses and validates a JSON simulation config, applying
// defaults for omitted fields.
func ParseConfig(jsonStr string) (*SimulationConfig, error) {
	cfg := &SimulationConfig{
		PolicyName:    PolicyCorrected,
		CycleStartDay: 1,
		Workers:       4,
	}
	if err := json.Unmarshal([]byte(jsonStr), cfg); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	switch cfg.PolicyName {
	case PolicyLegacy, PolicyCorrected:
	case "":
		cfg.PolicyName = PolicyCorrected
	default:
		return nil, fmt.Errorf("unknown policy %q", cfg.PolicyName)
	}

	if cfg.CycleStartDay == 0 {
		cfg.CycleStartDay = 1
	}
	if cfg.CycleStartDay < 1 || cfg.CycleStartDay > 28 {
		return nil, fmt.Errorf("cycle_start_day must be 1-28, got %d", cfg.CycleStartDay)
	}

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must be non-negative, got %d", cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}

	return cfg, nil
}

// CycleConfig returns the billing-cycle boundary configuration.
func (c *SimulationConfig) CycleConfig() billing.CycleConfig {
	return billing.CycleConfig{StartDay: c.CycleStartDay}
}

// Policy returns the configured allocation policy as a first-class value.
func (c *SimulationConfig) Policy() billing.AllocationPolicy {
	if c.PolicyName == PolicyLegacy {
		return billing.LegacyPolicy{}
	}
	return billing.NewCorrectedPolicy(c.CycleConfig())
}
