package deployments

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cyberforge/cyberforge/pkg/pagination"
	"github.com/cyberforge/cyberforge/pkg/query"
	"github.com/cyberforge/cyberforge/pkg/repository"
)

const insertDeploymentQ = `
	INSERT INTO deployment_history(
		user_id, recommendation_id, title, description, platform, security_level,
		deployed_at, was_successful, failure_reason)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, user_id, recommendation_id, title, description, platform, security_level,
		deployed_at, was_successful, failure_reason, created_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a deployment history repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "deployments"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Record(ctx context.Context, cmd RecordCommand) (*Deployment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	deployedAt := time.Now().UTC()
	if cmd.DeployedAt != nil {
		deployedAt = *cmd.DeployedAt
	}

	args := []any{
		cmd.UserID,
		cmd.RecommendationID,
		cmd.Title,
		cmd.Description,
		cmd.Platform,
		cmd.SecurityLevel,
		deployedAt,
		cmd.WasSuccessful,
		cmd.FailureReason,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Deployment, error) {
		return repository.QueryOne(ctx, tx, insertDeploymentQ, args, scanDeployment)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("deployment recorded",
		"id", d.ID,
		"user_id", d.UserID,
		"successful", d.WasSuccessful,
	)
	return &d, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Deployment], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count deployments: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDeployment)
	if err != nil {
		return nil, fmt.Errorf("query deployments: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Deployment, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDeployment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}
