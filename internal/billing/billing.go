// Package billing implements the usage and subscription domain for CyberForge.
// It supplies the usage snapshots that cost optimization recommendations are
// computed from. Pricing is injected configuration, never a code constant.
package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tier identifies a named subscription/resource level.
type Tier string

const (
	TierFree         Tier = "free"
	TierBasic        Tier = "basic"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// ParseTier validates a raw tier string against the closed set.
func ParseTier(raw string) (Tier, error) {
	switch Tier(raw) {
	case TierFree, TierBasic, TierProfessional, TierEnterprise:
		return Tier(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, raw)
	}
}

// PricingTable maps tiers to monthly costs. Built from configuration at wiring
// time; the engine and billing system treat it as opaque injected data.
type PricingTable map[Tier]float64

// TierCost pairs a tier with its monthly cost.
type TierCost struct {
	Tier        Tier    `json:"tier"`
	MonthlyCost float64 `json:"monthly_cost"`
}

// UsageSnapshot describes a user's current resource level and the priced
// alternatives available to them.
type UsageSnapshot struct {
	UserID           uuid.UUID  `json:"user_id"`
	CurrentTier      Tier       `json:"current_tier"`
	CurrentCost      float64    `json:"current_cost"`
	AlternativeTiers []TierCost `json:"alternative_tiers"`
}

// Subscription mirrors the user_subscriptions table schema. The most recent
// row per user is authoritative; users without one default to the free tier.
type Subscription struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Tier      Tier      `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

// SetTierCommand carries the data needed to record a subscription change.
type SetTierCommand struct {
	UserID uuid.UUID `json:"user_id"`
	Tier   Tier      `json:"tier"`
}
