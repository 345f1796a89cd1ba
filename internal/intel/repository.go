package intel

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

const insertRecordQ = `
	INSERT INTO intel_records(user_id, title, severity, source_name, source_url, discovered_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, user_id, title, severity, source_name, source_url, discovered_at, created_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an intel record repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "intel"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[IntelRecord], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "SourceName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count intel records: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query intel records: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*IntelRecord, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*IntelRecord, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (IntelRecord, error) {
		return insertRecord(ctx, tx, cmd)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("intel record ingested",
		"id", rec.ID,
		"user_id", rec.UserID,
		"severity", rec.Severity,
		"source", rec.SourceName,
	)
	return &rec, nil
}

func (r *repo) CreateBatch(ctx context.Context, cmds []CreateCommand) ([]IntelRecord, error) {
	for i := range cmds {
		if err := cmds[i].Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	records, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]IntelRecord, error) {
		out := make([]IntelRecord, 0, len(cmds))
		for _, cmd := range cmds {
			rec, err := insertRecord(ctx, tx, cmd)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
		return out, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("intel records ingested", "count", len(records))
	return records, nil
}

func (r *repo) QueryWindow(
	ctx context.Context,
	userID uuid.UUID,
	start, end time.Time,
) ([]IntelRecord, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("UserID", userID).
		WhereGTE("DiscoveredAt", start).
		WhereLT("DiscoveredAt", end).
		Build()

	records, err := repository.QueryMany(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query intel window: %w", err)
	}
	return records, nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, cmd CreateCommand) (IntelRecord, error) {
	discoveredAt := time.Now().UTC()
	if cmd.DiscoveredAt != nil {
		discoveredAt = *cmd.DiscoveredAt
	}

	args := []any{
		cmd.UserID,
		cmd.Title,
		cmd.Severity,
		cmd.SourceName,
		cmd.SourceURL,
		discoveredAt,
	}

	rec, err := repository.QueryOne(ctx, tx, insertRecordQ, args, scanRecord)
	if err != nil {
		return IntelRecord{}, fmt.Errorf("insert intel record: %w", err)
	}
	return rec, nil
}
