package recommendations

import (
	"fmt"
	"strings"
	"time"

	"github.com/cyberforge/cyberforge/internal/billing"
	"github.com/cyberforge/cyberforge/internal/intel"
)

// Tally counts intelligence records by severity within a look-back window.
type Tally struct {
	High   int
	Medium int
	Low    int
}

// Total returns the number of records counted.
func (t Tally) Total() int {
	return t.High + t.Medium + t.Low
}

// TallyRecords buckets records by severity. Order of the input is irrelevant.
func TallyRecords(records []intel.IntelRecord) Tally {
	var t Tally
	for _, r := range records {
		switch r.Severity {
		case intel.SeverityHigh:
			t.High++
		case intel.SeverityMedium:
			t.Medium++
		case intel.SeverityLow:
			t.Low++
		}
	}
	return t
}

// Verdict pairs a security level with a timing recommendation.
type Verdict struct {
	SecurityLevel SecurityLevel
	Timing        Timing
}

// Evaluate applies the severity rule table to a tally. Rules are checked in
// order and the first match wins:
//
//	high >= 1                 -> strict, high_risk
//	high == 0 and medium >= 5 -> enhanced, delay_recommended
//	high == 0 and medium 1..4 -> enhanced, caution
//	otherwise                 -> standard, safe_to_deploy
//
// A zero tally produces no verdict: callers must treat that as the no-signal
// case rather than a safe_to_deploy result.
func Evaluate(t Tally) (Verdict, bool) {
	if t.Total() == 0 {
		return Verdict{}, false
	}
	switch {
	case t.High >= 1:
		return Verdict{SecurityStrict, TimingHighRisk}, true
	case t.Medium >= 5:
		return Verdict{SecurityEnhanced, TimingDelayRecommended}, true
	case t.Medium >= 1:
		return Verdict{SecurityEnhanced, TimingCaution}, true
	default:
		return Verdict{SecurityStandard, TimingSafeToDeploy}, true
	}
}

// DeployWindow computes the recommended deployment window for a timing
// verdict. Riskier verdicts push the window start out by the policy cooldown;
// the window span is always the policy default window.
func DeployWindow(timing Timing, now time.Time, p Policy) (start, end time.Time) {
	start = now
	switch timing {
	case TimingDelayRecommended:
		start = now.Add(p.DelayCooldown)
	case TimingHighRisk:
		start = now.Add(p.HighRiskCooldown)
	}
	return start, start.Add(p.DefaultWindow)
}

// TimingJustification renders the human-readable rationale for a verdict over
// the given look-back window.
func TimingJustification(timing Timing, lookBackDays int) string {
	switch timing {
	case TimingHighRisk:
		return fmt.Sprintf("High severity threats detected in the past %d days.", lookBackDays)
	case TimingDelayRecommended:
		return fmt.Sprintf("Multiple medium severity threats detected in the past %d days.", lookBackDays)
	case TimingCaution:
		return fmt.Sprintf("Some medium severity threats detected in the past %d days.", lookBackDays)
	default:
		return fmt.Sprintf("No significant threats detected in the past %d days.", lookBackDays)
	}
}

// AssessmentSummary renders the multi-line threat assessment text stored with
// a threat-based recommendation.
func AssessmentSummary(t Tally, timing Timing) string {
	parts := []string{
		"Threat Assessment Summary",
		fmt.Sprintf("Based on analysis of %d recent threats:", t.Total()),
		fmt.Sprintf("- %d High severity threats", t.High),
		fmt.Sprintf("- %d Medium severity threats", t.Medium),
		fmt.Sprintf("- %d Low severity threats", t.Low),
		"",
		fmt.Sprintf("Deployment timing recommendation: %s", timing),
	}

	switch timing {
	case TimingHighRisk:
		parts = append(parts, "Strongly recommend delaying deployment until threat level decreases.")
	case TimingDelayRecommended:
		parts = append(parts, "Consider delaying deployment or implementing enhanced security measures.")
	case TimingCaution:
		parts = append(parts, "Proceed with caution and implement recommended security measures.")
	default:
		parts = append(parts, "Current threat environment is favorable for deployment.")
	}

	return strings.Join(parts, "\n")
}

// CostOutcome describes a viable cost optimization found in a usage snapshot.
type CostOutcome struct {
	TargetTier    billing.Tier
	EstimatedCost float64
	Saving        float64
	Justification string
}

// EvaluateCost inspects a usage snapshot for a cheaper alternative tier. The
// cheapest alternative wins; savings at or below minSaving are not worth a
// recommendation and produce no outcome.
func EvaluateCost(snapshot *billing.UsageSnapshot, minSaving float64) (CostOutcome, bool) {
	var best *billing.TierCost
	for i := range snapshot.AlternativeTiers {
		alt := &snapshot.AlternativeTiers[i]
		if alt.MonthlyCost >= snapshot.CurrentCost {
			continue
		}
		if best == nil || alt.MonthlyCost < best.MonthlyCost {
			best = alt
		}
	}
	if best == nil {
		return CostOutcome{}, false
	}

	saving := snapshot.CurrentCost - best.MonthlyCost
	if saving <= minSaving {
		return CostOutcome{}, false
	}

	return CostOutcome{
		TargetTier:    best.Tier,
		EstimatedCost: best.MonthlyCost,
		Saving:        saving,
		Justification: fmt.Sprintf(
			"Based on usage pattern analysis, switching from the %s tier to the %s tier saves approximately $%.2f per month.",
			snapshot.CurrentTier, best.Tier, saving,
		),
	}, true
}
