package recommendations

import (
	"time"

	"github.com/cyberforge/cyberforge/internal/config"
)

// Policy holds the resolved engine constants the scoring rules operate with.
// Durations are parsed once at wiring time so the rules never touch raw
// configuration strings.
type Policy struct {
	LookBackDays     int
	DefaultWindow    time.Duration
	DelayCooldown    time.Duration
	HighRiskCooldown time.Duration
	ThreatValidity   time.Duration
	CostValidity     time.Duration
	MinSaving        float64
}

// PolicyFromConfig resolves an EngineConfig into a Policy. The config must be
// finalized first; duration fields are assumed valid.
func PolicyFromConfig(cfg config.EngineConfig) Policy {
	return Policy{
		LookBackDays:     cfg.LookBackDays,
		DefaultWindow:    cfg.DefaultWindowDuration(),
		DelayCooldown:    cfg.DelayCooldownDuration(),
		HighRiskCooldown: cfg.HighRiskCooldownDuration(),
		ThreatValidity:   cfg.ThreatValidityDuration(),
		CostValidity:     cfg.CostValidityDuration(),
		MinSaving:        cfg.MinSaving,
	}
}
