package intel

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/cyberforge/cyberforge/pkg/query"
	"github.com/cyberforge/cyberforge/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "intel_records", "r").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("title", "Title").
	Project("severity", "Severity").
	Project("source_name", "SourceName").
	Project("source_url", "SourceURL").
	Project("discovered_at", "DiscoveredAt").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "DiscoveredAt",
	Descending: true,
}

// Filters contains optional filtering criteria for intel record queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	Severity   *Severity  `json:"severity,omitempty"`
	SourceName *string    `json:"source_name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("UserID", f.UserID).
		WhereEquals("Severity", f.Severity).
		WhereEquals("SourceName", f.SourceName)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if u := values.Get("user_id"); u != "" {
		if id, err := uuid.Parse(u); err == nil {
			f.UserID = &id
		}
	}

	if s := values.Get("severity"); s != "" {
		if sev, err := ParseSeverity(s); err == nil {
			f.Severity = &sev
		}
	}

	if s := values.Get("source_name"); s != "" {
		f.SourceName = &s
	}

	return f
}

func scanRecord(s repository.Scanner) (IntelRecord, error) {
	var r IntelRecord

	err := s.Scan(
		&r.ID,
		&r.UserID,
		&r.Title,
		&r.Severity,
		&r.SourceName,
		&r.SourceURL,
		&r.DiscoveredAt,
		&r.CreatedAt,
	)

	return r, err
}
