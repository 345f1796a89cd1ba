package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/cyberforge/cyberforge/pkg/repository"
)

const (
	latestSubscriptionQ = `
		SELECT id, user_id, tier, created_at
		FROM user_subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	insertSubscriptionQ = `
		INSERT INTO user_subscriptions(user_id, tier)
		VALUES ($1, $2)
		RETURNING id, user_id, tier, created_at`
)

type repo struct {
	db      *sql.DB
	pricing PricingTable
	logger  *slog.Logger
}

// New creates a billing repository implementing the System interface.
// The pricing table comes from configuration and is treated as read-only.
func New(db *sql.DB, pricing PricingTable, logger *slog.Logger) System {
	return &repo{
		db:      db,
		pricing: pricing,
		logger:  logger.With("system", "billing"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) GetUsageSnapshot(ctx context.Context, userID uuid.UUID) (*UsageSnapshot, error) {
	tier := TierFree

	sub, err := repository.QueryOne(ctx, r.db, latestSubscriptionQ, []any{userID}, scanSubscription)
	switch {
	case err == nil:
		tier = sub.Tier
	case errors.Is(err, sql.ErrNoRows):
		// No subscription row means the free tier.
	default:
		return nil, fmt.Errorf("query subscription: %w", err)
	}

	currentCost, ok := r.pricing[tier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTierNotPriced, tier)
	}

	alternatives := make([]TierCost, 0, len(r.pricing)-1)
	for t, cost := range r.pricing {
		if t == tier {
			continue
		}
		alternatives = append(alternatives, TierCost{Tier: t, MonthlyCost: cost})
	}

	sort.Slice(alternatives, func(i, j int) bool {
		return alternatives[i].MonthlyCost < alternatives[j].MonthlyCost
	})

	return &UsageSnapshot{
		UserID:           userID,
		CurrentTier:      tier,
		CurrentCost:      currentCost,
		AlternativeTiers: alternatives,
	}, nil
}

func (r *repo) SetTier(ctx context.Context, cmd SetTierCommand) (*Subscription, error) {
	if cmd.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id required", ErrInvalid)
	}
	if _, err := ParseTier(string(cmd.Tier)); err != nil {
		return nil, err
	}

	sub, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Subscription, error) {
		return repository.QueryOne(ctx, tx, insertSubscriptionQ, []any{cmd.UserID, cmd.Tier}, scanSubscription)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("subscription tier recorded",
		"user_id", sub.UserID,
		"tier", sub.Tier,
	)
	return &sub, nil
}

func scanSubscription(s repository.Scanner) (Subscription, error) {
	var sub Subscription
	err := s.Scan(&sub.ID, &sub.UserID, &sub.Tier, &sub.CreatedAt)
	return sub, err
}
