package recommendations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cyberforge/cyberforge/pkg/formatting"
	"github.com/cyberforge/cyberforge/pkg/pagination"
	"github.com/cyberforge/cyberforge/pkg/query"
	"github.com/cyberforge/cyberforge/pkg/repository"
	"github.com/cyberforge/cyberforge/pkg/storage"
)

const recommendationColumns = `id, user_id, title, description, security_level,
	timing_recommendation, timing_justification,
	recommended_window_start, recommended_window_end,
	estimated_cost, cost_saving_potential, cost_justification,
	threat_assessment_summary,
	high_risk_threats_count, medium_risk_threats_count, low_risk_threats_count,
	is_applied, applied_at, expires_at, created_at`

const insertRecommendationQ = `
	INSERT INTO recommendations(
		user_id, title, description, security_level,
		timing_recommendation, timing_justification,
		recommended_window_start, recommended_window_end,
		estimated_cost, cost_saving_potential, cost_justification,
		threat_assessment_summary,
		high_risk_threats_count, medium_risk_threats_count, low_risk_threats_count,
		expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	RETURNING ` + recommendationColumns

// applyRecommendationQ only matches unapplied rows. A repeated apply affects
// zero rows and the caller returns the stored record unchanged, so applied_at
// is set exactly once.
const applyRecommendationQ = `
	UPDATE recommendations
	SET is_applied = TRUE, applied_at = $2
	WHERE id = $1 AND is_applied = FALSE
	RETURNING ` + recommendationColumns

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	policy     Policy
	records    RecordSource
	usage      UsageSource
	store      storage.System
}

// New creates a recommendation engine repository implementing the System
// interface. The record source and usage source are the engine's read-side
// collaborators; the storage system receives exported assessments.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
	policy Policy,
	records RecordSource,
	usage UsageSource,
	store storage.System,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "recommendations"),
		pagination: pagination,
		policy:     policy,
		records:    records,
		usage:      usage,
		store:      store,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) GenerateThreatBased(ctx context.Context, cmd GenerateThreatCommand) (*Recommendation, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	lookBack := r.policy.LookBackDays
	if cmd.LookBackDays != nil {
		lookBack = *cmd.LookBackDays
	}

	now := time.Now().UTC()
	windowStart := now.AddDate(0, 0, -lookBack)

	records, err := r.records.QueryWindow(ctx, cmd.UserID, windowStart, now)
	if err != nil {
		return nil, fmt.Errorf("%w: query threat window: %v", ErrUpstream, err)
	}

	tally := TallyRecords(records)
	verdict, ok := Evaluate(tally)
	if !ok {
		r.logger.Info("no threat signal",
			"user_id", cmd.UserID,
			"look_back_days", lookBack,
		)
		return nil, ErrNoSignal
	}

	deployStart, deployEnd := DeployWindow(verdict.Timing, now, r.policy)
	summary := AssessmentSummary(tally, verdict.Timing)
	expires := now.Add(r.policy.ThreatValidity)

	args := []any{
		cmd.UserID,
		fmt.Sprintf("Deployment recommendation based on %d recent threats", tally.Total()),
		fmt.Sprintf("Automatic recommendation generated from threat analysis over the past %d days.", lookBack),
		verdict.SecurityLevel,
		verdict.Timing,
		TimingJustification(verdict.Timing, lookBack),
		deployStart,
		deployEnd,
		nil, // estimated_cost
		nil, // cost_saving_potential
		nil, // cost_justification
		summary,
		tally.High,
		tally.Medium,
		tally.Low,
		expires,
	}

	rec, err := r.insert(ctx, args)
	if err != nil {
		return nil, err
	}

	r.logger.Info("threat recommendation generated",
		"id", rec.ID,
		"user_id", rec.UserID,
		"security_level", rec.SecurityLevel,
		"timing", rec.TimingRecommendation,
		"threats", tally.Total(),
	)
	return rec, nil
}

func (r *repo) GenerateCostOptimization(ctx context.Context, cmd GenerateCostCommand) (*Recommendation, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := r.usage.GetUsageSnapshot(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: usage snapshot: %v", ErrUpstream, err)
	}

	outcome, ok := EvaluateCost(snapshot, r.policy.MinSaving)
	if !ok {
		r.logger.Info("no cost signal",
			"user_id", cmd.UserID,
			"current_tier", snapshot.CurrentTier,
		)
		return nil, ErrNoSignal
	}

	now := time.Now().UTC()
	expires := now.Add(r.policy.CostValidity)

	args := []any{
		cmd.UserID,
		"Cost Optimization Recommendations",
		"Recommendations for optimizing deployment costs based on usage patterns.",
		SecurityCustom,
		TimingUnknown,
		"Cost optimization can be applied at any time.",
		nil, // recommended_window_start
		nil, // recommended_window_end
		outcome.EstimatedCost,
		outcome.Saving,
		outcome.Justification,
		nil, // threat_assessment_summary
		0,
		0,
		0,
		expires,
	}

	rec, err := r.insert(ctx, args)
	if err != nil {
		return nil, err
	}

	r.logger.Info("cost recommendation generated",
		"id", rec.ID,
		"user_id", rec.UserID,
		"target_tier", outcome.TargetTier,
		"saving", outcome.Saving,
	)
	return rec, nil
}

// Refresh runs both generators concurrently. A generator returning
// ErrNoSignal contributes nothing; any other failure aborts the refresh.
func (r *repo) Refresh(ctx context.Context, userID uuid.UUID) ([]Recommendation, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id required", ErrInvalid)
	}

	var threat, cost *Recommendation

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rec, err := r.GenerateThreatBased(gctx, GenerateThreatCommand{UserID: userID})
		if err != nil && !errors.Is(err, ErrNoSignal) {
			return err
		}
		threat = rec
		return nil
	})

	g.Go(func() error {
		rec, err := r.GenerateCostOptimization(gctx, GenerateCostCommand{UserID: userID})
		if err != nil && !errors.Is(err, ErrNoSignal) {
			return err
		}
		cost = rec
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Recommendation, 0, 2)
	if threat != nil {
		out = append(out, *threat)
	}
	if cost != nil {
		out = append(out, *cost)
	}

	r.logger.Info("recommendations refreshed", "user_id", userID, "generated", len(out))
	return out, nil
}

func (r *repo) MarkApplied(ctx context.Context, id uuid.UUID) (*Recommendation, error) {
	now := time.Now().UTC()

	rec, err := repository.QueryOne(ctx, r.db, applyRecommendationQ, []any{id, now}, scanRecommendation)
	if err == nil {
		r.logger.Info("recommendation applied", "id", rec.ID, "applied_at", rec.AppliedAt)
		return &rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("apply recommendation: %w", err)
	}

	// Zero rows: either already applied or missing. Find settles which.
	return r.Find(ctx, id)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Recommendation], error) {
	page.Normalize(r.pagination)
	now := time.Now().UTC()

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Description")

	filters.Apply(qb, now)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count recommendations: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecommendation)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Recommendation, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecommendation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) Export(ctx context.Context, id uuid.UUID) (*ExportResult, error) {
	rec, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	body := renderAssessment(rec)
	key := fmt.Sprintf("assessments/%s.txt", rec.ID)

	if err := r.store.Upload(ctx, key, strings.NewReader(body), "text/plain; charset=utf-8"); err != nil {
		return nil, fmt.Errorf("export assessment: %w", err)
	}

	size := int64(len(body))
	r.logger.Info("assessment exported",
		"id", rec.ID,
		"key", key,
		"size", formatting.FormatBytes(size, 1),
	)
	return &ExportResult{Key: key, Size: size}, nil
}

func (r *repo) insert(ctx context.Context, args []any) (*Recommendation, error) {
	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Recommendation, error) {
		return repository.QueryOne(ctx, tx, insertRecommendationQ, args, scanRecommendation)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func renderAssessment(rec *Recommendation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", rec.Title)
	fmt.Fprintf(&b, "Generated: %s\n\n", rec.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "%s\n\n", rec.Description)
	fmt.Fprintf(&b, "Security level: %s\n", rec.SecurityLevel)
	fmt.Fprintf(&b, "Timing: %s\n", rec.TimingRecommendation)
	fmt.Fprintf(&b, "Justification: %s\n", rec.TimingJustification)

	if rec.RecommendedWindowStart != nil && rec.RecommendedWindowEnd != nil {
		fmt.Fprintf(&b, "Recommended window: %s to %s\n",
			rec.RecommendedWindowStart.Format(time.RFC3339),
			rec.RecommendedWindowEnd.Format(time.RFC3339),
		)
	}

	if rec.EstimatedCost != nil {
		fmt.Fprintf(&b, "Estimated cost: $%.2f per month\n", *rec.EstimatedCost)
	}
	if rec.CostSavingPotential != nil {
		fmt.Fprintf(&b, "Potential saving: $%.2f per month\n", *rec.CostSavingPotential)
	}
	if rec.CostJustification != nil {
		fmt.Fprintf(&b, "%s\n", *rec.CostJustification)
	}

	if rec.ThreatAssessmentSummary != nil {
		fmt.Fprintf(&b, "\n%s\n", *rec.ThreatAssessmentSummary)
	}

	if rec.ExpiresAt != nil {
		fmt.Fprintf(&b, "\nValid until: %s\n", rec.ExpiresAt.Format(time.RFC3339))
	}

	return b.String()
}
