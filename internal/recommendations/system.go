package recommendations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cyberforge/cyberforge/internal/billing"
	"github.com/cyberforge/cyberforge/internal/intel"
	"github.com/cyberforge/cyberforge/pkg/pagination"
)

// RecordSource supplies intelligence records for a user within a half-open
// time window [start, end). No ordering is assumed; the engine tallies by
// severity only.
type RecordSource interface {
	QueryWindow(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]intel.IntelRecord, error)
}

// UsageSource supplies the usage snapshot cost optimization works from.
type UsageSource interface {
	GetUsageSnapshot(ctx context.Context, userID uuid.UUID) (*billing.UsageSnapshot, error)
}

// System defines the recommendation engine operations.
//
// Both generators return ErrNoSignal when there is nothing worth
// recommending: an empty threat window, or no saving above the configured
// threshold. Callers must not mistake that for a safe_to_deploy verdict.
type System interface {
	Handler() *Handler

	GenerateThreatBased(ctx context.Context, cmd GenerateThreatCommand) (*Recommendation, error)
	GenerateCostOptimization(ctx context.Context, cmd GenerateCostCommand) (*Recommendation, error)
	Refresh(ctx context.Context, userID uuid.UUID) ([]Recommendation, error)
	MarkApplied(ctx context.Context, id uuid.UUID) (*Recommendation, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Recommendation], error)
	Find(ctx context.Context, id uuid.UUID) (*Recommendation, error)
	Export(ctx context.Context, id uuid.UUID) (*ExportResult, error)
}
