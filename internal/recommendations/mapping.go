package recommendations

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/cyberforge/cyberforge/pkg/query"
	"github.com/cyberforge/cyberforge/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "recommendations", "rec").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("title", "Title").
	Project("description", "Description").
	Project("security_level", "SecurityLevel").
	Project("timing_recommendation", "TimingRecommendation").
	Project("timing_justification", "TimingJustification").
	Project("recommended_window_start", "RecommendedWindowStart").
	Project("recommended_window_end", "RecommendedWindowEnd").
	Project("estimated_cost", "EstimatedCost").
	Project("cost_saving_potential", "CostSavingPotential").
	Project("cost_justification", "CostJustification").
	Project("threat_assessment_summary", "ThreatAssessmentSummary").
	Project("high_risk_threats_count", "HighRiskThreatsCount").
	Project("medium_risk_threats_count", "MediumRiskThreatsCount").
	Project("low_risk_threats_count", "LowRiskThreatsCount").
	Project("is_applied", "IsApplied").
	Project("applied_at", "AppliedAt").
	Project("expires_at", "ExpiresAt").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for recommendation listings.
// ActiveOnly restricts results to unapplied recommendations; expired entries
// are excluded unless IncludeExpired is set.
type Filters struct {
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	ActiveOnly     bool       `json:"active_only,omitempty"`
	IncludeExpired bool       `json:"include_expired,omitempty"`
}

// Apply adds filter conditions to a query builder, evaluating expiry against
// the given instant.
func (f Filters) Apply(b *query.Builder, now time.Time) *query.Builder {
	b.WhereEquals("UserID", f.UserID)

	if f.ActiveOnly {
		b.WhereEquals("IsApplied", false)
	}
	if !f.IncludeExpired {
		b.WhereGreaterOrNull("ExpiresAt", now)
	}

	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if u := values.Get("user_id"); u != "" {
		if id, err := uuid.Parse(u); err == nil {
			f.UserID = &id
		}
	}

	f.ActiveOnly = values.Get("active_only") == "true"
	f.IncludeExpired = values.Get("include_expired") == "true"

	return f
}

func scanRecommendation(s repository.Scanner) (Recommendation, error) {
	var rec Recommendation

	err := s.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Title,
		&rec.Description,
		&rec.SecurityLevel,
		&rec.TimingRecommendation,
		&rec.TimingJustification,
		&rec.RecommendedWindowStart,
		&rec.RecommendedWindowEnd,
		&rec.EstimatedCost,
		&rec.CostSavingPotential,
		&rec.CostJustification,
		&rec.ThreatAssessmentSummary,
		&rec.HighRiskThreatsCount,
		&rec.MediumRiskThreatsCount,
		&rec.LowRiskThreatsCount,
		&rec.IsApplied,
		&rec.AppliedAt,
		&rec.ExpiresAt,
		&rec.CreatedAt,
	)

	return rec, err
}
