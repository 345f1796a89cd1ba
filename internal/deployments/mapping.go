package deployments

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/cyberforge/cyberforge/pkg/query"
	"github.com/cyberforge/cyberforge/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "deployment_history", "d").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("recommendation_id", "RecommendationID").
	Project("title", "Title").
	Project("description", "Description").
	Project("platform", "Platform").
	Project("security_level", "SecurityLevel").
	Project("deployed_at", "DeployedAt").
	Project("was_successful", "WasSuccessful").
	Project("failure_reason", "FailureReason").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "DeployedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for deployment history queries.
type Filters struct {
	UserID           *uuid.UUID `json:"user_id,omitempty"`
	RecommendationID *uuid.UUID `json:"recommendation_id,omitempty"`
	SuccessfulOnly   bool       `json:"successful_only,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.WhereEquals("UserID", f.UserID).
		WhereEquals("RecommendationID", f.RecommendationID)

	if f.SuccessfulOnly {
		b.WhereEquals("WasSuccessful", true)
	}

	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if u := values.Get("user_id"); u != "" {
		if id, err := uuid.Parse(u); err == nil {
			f.UserID = &id
		}
	}

	if u := values.Get("recommendation_id"); u != "" {
		if id, err := uuid.Parse(u); err == nil {
			f.RecommendationID = &id
		}
	}

	f.SuccessfulOnly = values.Get("successful_only") == "true"

	return f
}

func scanDeployment(s repository.Scanner) (Deployment, error) {
	var d Deployment

	err := s.Scan(
		&d.ID,
		&d.UserID,
		&d.RecommendationID,
		&d.Title,
		&d.Description,
		&d.Platform,
		&d.SecurityLevel,
		&d.DeployedAt,
		&d.WasSuccessful,
		&d.FailureReason,
		&d.CreatedAt,
	)

	return d, err
}
