package billing

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for billing operations. GetUsageSnapshot
// is the collaborator contract consumed by cost optimization: it reports the
// user's current tier and cost alongside the priced alternatives.
type System interface {
	Handler() *Handler

	GetUsageSnapshot(ctx context.Context, userID uuid.UUID) (*UsageSnapshot, error)
	SetTier(ctx context.Context, cmd SetTierCommand) (*Subscription, error)
}
