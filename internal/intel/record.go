// Package intel implements the intelligence record domain for CyberForge.
// It provides types and data access for the dark-web-sourced records that
// feed threat-based deployment recommendations. Records are immutable once
// stored; there is no update or delete surface.
package intel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity classifies an intelligence record's threat severity.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity validates a raw severity string against the closed set.
func ParseSeverity(raw string) (Severity, error) {
	switch Severity(raw) {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return Severity(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, raw)
	}
}

// IntelRecord represents a single piece of collected intelligence.
// It mirrors the intel_records table schema.
type IntelRecord struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Title        string    `json:"title"`
	Severity     Severity  `json:"severity"`
	SourceName   string    `json:"source_name"`
	SourceURL    *string   `json:"source_url"`
	DiscoveredAt time.Time `json:"discovered_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateCommand carries the data needed to ingest an intelligence record.
// DiscoveredAt defaults to the ingest time when omitted.
type CreateCommand struct {
	UserID       uuid.UUID  `json:"user_id"`
	Title        string     `json:"title"`
	Severity     Severity   `json:"severity"`
	SourceName   string     `json:"source_name"`
	SourceURL    *string    `json:"source_url,omitempty"`
	DiscoveredAt *time.Time `json:"discovered_at,omitempty"`
}

// Validate checks the command for required fields and a valid severity.
func (c *CreateCommand) Validate() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("%w: user_id required", ErrInvalid)
	}
	if c.Title == "" {
		return fmt.Errorf("%w: title required", ErrInvalid)
	}
	if c.SourceName == "" {
		return fmt.Errorf("%w: source_name required", ErrInvalid)
	}
	if _, err := ParseSeverity(string(c.Severity)); err != nil {
		return err
	}
	return nil
}
