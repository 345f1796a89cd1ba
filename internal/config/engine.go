package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvEngineLookBackDays     = "CYBERFORGE_ENGINE_LOOK_BACK_DAYS"
	EnvEngineDefaultWindow    = "CYBERFORGE_ENGINE_DEFAULT_WINDOW"
	EnvEngineDelayCooldown    = "CYBERFORGE_ENGINE_DELAY_COOLDOWN"
	EnvEngineHighRiskCooldown = "CYBERFORGE_ENGINE_HIGH_RISK_COOLDOWN"
	EnvEngineThreatValidity   = "CYBERFORGE_ENGINE_THREAT_VALIDITY"
	EnvEngineCostValidity     = "CYBERFORGE_ENGINE_COST_VALIDITY"
	EnvEngineMinSaving        = "CYBERFORGE_ENGINE_MIN_SAVING"
)

// TierPrice binds a subscription tier name to its monthly cost.
type TierPrice struct {
	Tier        string  `toml:"tier"`
	MonthlyCost float64 `toml:"monthly_cost"`
}

// EngineConfig holds the recommendation engine policy constants and the
// injected pricing table. Scoring rules never embed currency or duration
// constants directly; they read them from here.
type EngineConfig struct {
	LookBackDays     int         `toml:"look_back_days"`
	DefaultWindow    string      `toml:"default_window"`
	DelayCooldown    string      `toml:"delay_cooldown"`
	HighRiskCooldown string      `toml:"high_risk_cooldown"`
	ThreatValidity   string      `toml:"threat_validity"`
	CostValidity     string      `toml:"cost_validity"`
	MinSaving        float64     `toml:"min_saving"`
	Pricing          []TierPrice `toml:"pricing"`
}

// DefaultWindowDuration returns DefaultWindow as a time.Duration.
func (c *EngineConfig) DefaultWindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.DefaultWindow)
	return d
}

// DelayCooldownDuration returns DelayCooldown as a time.Duration.
func (c *EngineConfig) DelayCooldownDuration() time.Duration {
	d, _ := time.ParseDuration(c.DelayCooldown)
	return d
}

// HighRiskCooldownDuration returns HighRiskCooldown as a time.Duration.
func (c *EngineConfig) HighRiskCooldownDuration() time.Duration {
	d, _ := time.ParseDuration(c.HighRiskCooldown)
	return d
}

// ThreatValidityDuration returns ThreatValidity as a time.Duration.
func (c *EngineConfig) ThreatValidityDuration() time.Duration {
	d, _ := time.ParseDuration(c.ThreatValidity)
	return d
}

// CostValidityDuration returns CostValidity as a time.Duration.
func (c *EngineConfig) CostValidityDuration() time.Duration {
	d, _ := time.ParseDuration(c.CostValidity)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EngineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. A non-empty overlay pricing
// table replaces the base table entirely.
func (c *EngineConfig) Merge(overlay *EngineConfig) {
	if overlay.LookBackDays != 0 {
		c.LookBackDays = overlay.LookBackDays
	}
	if overlay.DefaultWindow != "" {
		c.DefaultWindow = overlay.DefaultWindow
	}
	if overlay.DelayCooldown != "" {
		c.DelayCooldown = overlay.DelayCooldown
	}
	if overlay.HighRiskCooldown != "" {
		c.HighRiskCooldown = overlay.HighRiskCooldown
	}
	if overlay.ThreatValidity != "" {
		c.ThreatValidity = overlay.ThreatValidity
	}
	if overlay.CostValidity != "" {
		c.CostValidity = overlay.CostValidity
	}
	if overlay.MinSaving != 0 {
		c.MinSaving = overlay.MinSaving
	}
	if len(overlay.Pricing) > 0 {
		c.Pricing = overlay.Pricing
	}
}

func (c *EngineConfig) loadDefaults() {
	if c.LookBackDays == 0 {
		c.LookBackDays = 7
	}
	if c.DefaultWindow == "" {
		c.DefaultWindow = "168h"
	}
	if c.DelayCooldown == "" {
		c.DelayCooldown = "24h"
	}
	if c.HighRiskCooldown == "" {
		c.HighRiskCooldown = "72h"
	}
	if c.ThreatValidity == "" {
		c.ThreatValidity = "168h"
	}
	if c.CostValidity == "" {
		c.CostValidity = "720h"
	}
	if len(c.Pricing) == 0 {
		c.Pricing = []TierPrice{
			{Tier: "free", MonthlyCost: 0},
			{Tier: "basic", MonthlyCost: 29},
			{Tier: "professional", MonthlyCost: 79},
			{Tier: "enterprise", MonthlyCost: 199},
		}
	}
}

func (c *EngineConfig) loadEnv() {
	if v := os.Getenv(EnvEngineLookBackDays); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LookBackDays = n
		}
	}
	if v := os.Getenv(EnvEngineDefaultWindow); v != "" {
		c.DefaultWindow = v
	}
	if v := os.Getenv(EnvEngineDelayCooldown); v != "" {
		c.DelayCooldown = v
	}
	if v := os.Getenv(EnvEngineHighRiskCooldown); v != "" {
		c.HighRiskCooldown = v
	}
	if v := os.Getenv(EnvEngineThreatValidity); v != "" {
		c.ThreatValidity = v
	}
	if v := os.Getenv(EnvEngineCostValidity); v != "" {
		c.CostValidity = v
	}
	if v := os.Getenv(EnvEngineMinSaving); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.MinSaving = f
		}
	}
}

func (c *EngineConfig) validate() error {
	if c.LookBackDays < 1 {
		return fmt.Errorf("look_back_days must be positive")
	}
	if c.MinSaving < 0 {
		return fmt.Errorf("min_saving cannot be negative")
	}

	durations := map[string]string{
		"default_window":     c.DefaultWindow,
		"delay_cooldown":     c.DelayCooldown,
		"high_risk_cooldown": c.HighRiskCooldown,
		"threat_validity":    c.ThreatValidity,
		"cost_validity":      c.CostValidity,
	}
	for name, raw := range durations {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	seen := make(map[string]bool, len(c.Pricing))
	for _, p := range c.Pricing {
		if p.Tier == "" {
			return fmt.Errorf("pricing tier name required")
		}
		if p.MonthlyCost < 0 {
			return fmt.Errorf("pricing tier %s: monthly_cost cannot be negative", p.Tier)
		}
		if seen[p.Tier] {
			return fmt.Errorf("pricing tier %s duplicated", p.Tier)
		}
		seen[p.Tier] = true
	}

	return nil
}
