// Package framework provides the versioned framework entity and its
// lifecycle service. A framework (ISO 27001, SOC 2, ...) owns a series of
// dated versions; at most one version per framework is active at a time.
package framework

import (
	"time"

	"github.com/google/uuid"
	"github.com/regtrace/regtrace/pkg/types"
)

// ============================================================================
// Framework Version Entity
// ============================================================================

// Version represents one dated revision of a regulatory framework,
// e.g. "ISO 27001:2022"
type Version struct {
	// Unique identifier
	ID string `json:"id"`

	// Framework this version belongs to
	FrameworkID string `json:"framework_id"`

	// Human-readable version code (e.g. "2022", "v4.0.1")
	VersionCode string `json:"version_code"`

	// Display name of the framework revision
	Name string `json:"name"`

	// Lifecycle status
	Status types.VersionStatus `json:"status"`

	// When the version was published by the issuing body
	PublishedDate time.Time `json:"published_date"`

	// When the version takes effect
	EffectiveDate time.Time `json:"effective_date"`

	// Deadline for organizations to transition, when the issuing body set one
	TransitionDeadline *time.Time `json:"transition_deadline,omitempty"`

	// When the version stops being auditable against
	SunsetDate *time.Time `json:"sunset_date,omitempty"`

	// Back-reference to the version this one revises (not ownership)
	PreviousVersionID string `json:"previous_version_id,omitempty"`

	// Summary of changes relative to the previous version
	Changes []VersionChange `json:"changes,omitempty"`

	// Creation timestamp
	CreatedAt time.Time `json:"created_at"`

	// Last update timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

// VersionChange summarizes one change item in a version's changelog
type VersionChange struct {
	// Requirement code the change concerns
	RequirementCode string `json:"requirement_code"`

	// Change kind (added, modified, removed)
	ChangeKind string `json:"change_kind"`

	// Free-text summary
	Summary string `json:"summary"`
}

// NewVersion creates a draft version for a framework
func NewVersion(frameworkID, versionCode, name string, publishedDate, effectiveDate time.Time) *Version {
	now := time.Now().UTC()
	return &Version{
		ID:            uuid.NewString(),
		FrameworkID:   frameworkID,
		VersionCode:   versionCode,
		Name:          name,
		Status:        types.VersionStatusDraft,
		PublishedDate: publishedDate,
		EffectiveDate: effectiveDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Activatable reports whether the version may transition to active
func (v *Version) Activatable() bool {
	switch v.Status {
	case types.VersionStatusDraft, types.VersionStatusPublished, types.VersionStatusSuperseded:
		return true
	default:
		return false
	}
}

// ComplianceDeadline returns the date by which organizations must comply
// with this version: the transition deadline when the issuing body set
// one, otherwise the effective date plus the configured grace period.
func (v *Version) ComplianceDeadline(graceDays int) time.Time {
	if v.TransitionDeadline != nil {
		return *v.TransitionDeadline
	}
	return v.EffectiveDate.AddDate(0, 0, graceDays)
}
