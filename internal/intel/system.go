package intel

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cyberforge/cyberforge/pkg/pagination"
)

// System defines the public contract for intelligence record operations.
// QueryWindow is the record store read contract consumed by the
// recommendation engine: it returns a finite, possibly empty sequence and
// callers must not assume any ordering.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[IntelRecord], error)

	Find(ctx context.Context, id uuid.UUID) (*IntelRecord, error)
	Create(ctx context.Context, cmd CreateCommand) (*IntelRecord, error)
	CreateBatch(ctx context.Context, cmds []CreateCommand) ([]IntelRecord, error)
	QueryWindow(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]IntelRecord, error)
}
