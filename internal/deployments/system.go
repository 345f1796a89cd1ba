package deployments

import (
	"context"

	"github.com/google/uuid"

	"github.com/cyberforge/cyberforge/pkg/pagination"
)

// System defines the deployment history operations. History is append-only:
// there is no update or delete.
type System interface {
	Handler() *Handler

	Record(ctx context.Context, cmd RecordCommand) (*Deployment, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Deployment], error)
	Find(ctx context.Context, id uuid.UUID) (*Deployment, error)
}
