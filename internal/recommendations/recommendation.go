// Package recommendations implements the deployment recommendation engine for
// CyberForge. It turns a time window of intelligence records, or a usage
// snapshot, into a persisted Recommendation carrying a security configuration
// tier, a timing verdict, and optional deployment window and cost estimates.
// Scoring rules are pure functions over record tallies; persistence and
// collaborator access live in the repository.
package recommendations

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SecurityLevel is the recommended security configuration tier.
type SecurityLevel string

const (
	SecurityStandard SecurityLevel = "standard"
	SecurityEnhanced SecurityLevel = "enhanced"
	SecurityStrict   SecurityLevel = "strict"
	SecurityCustom   SecurityLevel = "custom"
)

// Timing is the deployment timing verdict.
type Timing string

const (
	TimingSafeToDeploy     Timing = "safe_to_deploy"
	TimingCaution          Timing = "caution"
	TimingDelayRecommended Timing = "delay_recommended"
	TimingHighRisk         Timing = "high_risk"
	TimingUnknown          Timing = "unknown"
)

// Recommendation represents a stored deployment recommendation.
// It mirrors the recommendations table schema.
type Recommendation struct {
	ID                      uuid.UUID     `json:"id"`
	UserID                  uuid.UUID     `json:"user_id"`
	Title                   string        `json:"title"`
	Description             string        `json:"description"`
	SecurityLevel           SecurityLevel `json:"security_level"`
	TimingRecommendation    Timing        `json:"timing_recommendation"`
	TimingJustification     string        `json:"timing_justification"`
	RecommendedWindowStart  *time.Time    `json:"recommended_window_start"`
	RecommendedWindowEnd    *time.Time    `json:"recommended_window_end"`
	EstimatedCost           *float64      `json:"estimated_cost"`
	CostSavingPotential     *float64      `json:"cost_saving_potential"`
	CostJustification       *string       `json:"cost_justification"`
	ThreatAssessmentSummary *string       `json:"threat_assessment_summary"`
	HighRiskThreatsCount    int           `json:"high_risk_threats_count"`
	MediumRiskThreatsCount  int           `json:"medium_risk_threats_count"`
	LowRiskThreatsCount     int           `json:"low_risk_threats_count"`
	IsApplied               bool          `json:"is_applied"`
	AppliedAt               *time.Time    `json:"applied_at"`
	ExpiresAt               *time.Time    `json:"expires_at"`
	CreatedAt               time.Time     `json:"created_at"`
}

// Expired reports whether the recommendation's validity has passed at the
// given instant. Recommendations without an expiry never expire.
func (r *Recommendation) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// GenerateThreatCommand carries the input for threat-based generation.
// An omitted LookBackDays selects the configured default window; an explicit
// value must be positive.
type GenerateThreatCommand struct {
	UserID       uuid.UUID `json:"user_id"`
	LookBackDays *int      `json:"look_back_days,omitempty"`
}

// Validate checks the command for a user identity and a positive window.
func (c *GenerateThreatCommand) Validate() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("%w: user_id required", ErrInvalid)
	}
	if c.LookBackDays != nil && *c.LookBackDays <= 0 {
		return fmt.Errorf("%w: %d days", ErrInvalidWindow, *c.LookBackDays)
	}
	return nil
}

// GenerateCostCommand carries the input for cost optimization generation.
type GenerateCostCommand struct {
	UserID uuid.UUID `json:"user_id"`
}

// Validate checks the command for a user identity.
func (c *GenerateCostCommand) Validate() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("%w: user_id required", ErrInvalid)
	}
	return nil
}

// RefreshCommand carries the input for running both generators.
type RefreshCommand struct {
	UserID uuid.UUID `json:"user_id"`
}

// Validate checks the command for a user identity.
func (c *RefreshCommand) Validate() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("%w: user_id required", ErrInvalid)
	}
	return nil
}

// ExportResult describes an assessment artifact written to blob storage.
type ExportResult struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}
