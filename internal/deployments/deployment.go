// Package deployments implements the append-only deployment history for
// CyberForge. Entries record what was deployed, when, whether it succeeded,
// and optionally which recommendation prompted it. History is never updated
// or deleted.
package deployments

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Deployment represents a recorded deployment event. It mirrors the
// deployment_history table schema. SecurityLevel and Platform are free-form
// snapshots of what was actually deployed, not references into the
// recommendation tables.
type Deployment struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	RecommendationID *uuid.UUID `json:"recommendation_id"`
	Title            string     `json:"title"`
	Description      *string    `json:"description"`
	Platform         *string    `json:"platform"`
	SecurityLevel    *string    `json:"security_level"`
	DeployedAt       time.Time  `json:"deployed_at"`
	WasSuccessful    bool       `json:"was_successful"`
	FailureReason    *string    `json:"failure_reason"`
	CreatedAt        time.Time  `json:"created_at"`
}

// RecordCommand carries the data needed to append a deployment entry.
// A nil DeployedAt records the current time.
type RecordCommand struct {
	UserID           uuid.UUID  `json:"user_id"`
	RecommendationID *uuid.UUID `json:"recommendation_id"`
	Title            string     `json:"title"`
	Description      *string    `json:"description"`
	Platform         *string    `json:"platform"`
	SecurityLevel    *string    `json:"security_level"`
	DeployedAt       *time.Time `json:"deployed_at"`
	WasSuccessful    bool       `json:"was_successful"`
	FailureReason    *string    `json:"failure_reason"`
}

// Validate checks the command for required fields.
func (c *RecordCommand) Validate() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("%w: user_id required", ErrInvalid)
	}
	if c.Title == "" {
		return fmt.Errorf("%w: title required", ErrInvalid)
	}
	return nil
}
