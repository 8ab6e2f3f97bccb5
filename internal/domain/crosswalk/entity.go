// Package crosswalk provides the N:N junction between internal controls
// and versioned regulatory requirements. Each mapping is scoped to one
// framework version and carries a coverage percentage and strength.
package crosswalk

import (
	"time"

	"github.com/google/uuid"
	"github.com/regtrace/regtrace/pkg/errors"
	"github.com/regtrace/regtrace/pkg/types"
)

// Mapping links one control to one master requirement within one
// specific framework version
type Mapping struct {
	// Unique identifier
	ID string `json:"id"`

	// Internal control being mapped
	ControlID string `json:"control_id"`

	// Master requirement being satisfied
	RequirementID string `json:"requirement_id"`

	// Requirement code, denormalized for cross-version matching
	RequirementCode string `json:"requirement_code"`

	// Framework version the mapping is valid within
	FrameworkVersionID string `json:"framework_version_id"`

	// How directly the control implements the requirement
	Strength types.MappingStrength `json:"mapping_strength"`

	// Fraction of the requirement's intent covered, 0-100
	CoveragePercentage int `json:"coverage_percentage"`

	// Aspects of the requirement the control covers
	CoveredAspects []string `json:"covered_aspects,omitempty"`

	// Aspects the control leaves uncovered
	UncoveredAspects []string `json:"uncovered_aspects,omitempty"`

	// Free-text rationale recorded at mapping time
	Justification string `json:"justification,omitempty"`

	// Version the mapping became valid in
	ValidFromVersion string `json:"valid_from_version"`

	// Version the mapping stopped being current in; empty means current
	ValidUntilVersion string `json:"valid_until_version,omitempty"`

	// Drift state, mutated only by the drift engine
	DriftStatus types.DriftStatus `json:"drift_status"`

	// Creation timestamp
	CreatedAt time.Time `json:"created_at"`

	// Last update timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMapping creates a current mapping between a control and a
// requirement version
func NewMapping(controlID, requirementID, requirementCode, frameworkVersionID string,
	strength types.MappingStrength, coverage int) (*Mapping, error) {

	if coverage < 0 || coverage > 100 {
		return nil, errors.NewFromCode(errors.ErrCoverageOutOfRange).
			WithDetails("coverage_percentage", coverage)
	}
	if !strength.Valid() {
		return nil, errors.ValidationErrorf("invalid mapping strength %q", strength)
	}

	now := time.Now().UTC()
	return &Mapping{
		ID:                 uuid.NewString(),
		ControlID:          controlID,
		RequirementID:      requirementID,
		RequirementCode:    requirementCode,
		FrameworkVersionID: frameworkVersionID,
		Strength:           strength,
		CoveragePercentage: coverage,
		ValidFromVersion:   frameworkVersionID,
		DriftStatus:        types.DriftStatusCurrent,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Current reports whether the mapping has not been superseded
func (m *Mapping) Current() bool {
	return m.ValidUntilVersion == ""
}

// Supersede closes the mapping as of the given version
func (m *Mapping) Supersede(versionID string) {
	m.ValidUntilVersion = versionID
	m.UpdatedAt = time.Now().UTC()
}
