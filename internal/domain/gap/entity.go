// Package gap implements the gap detector: requirements with zero or
// insufficient crosswalk coverage become CustomGap records with fixed
// remediation option templates. Recalculation is always a full pass,
// never a per-event patch.
package gap

import (
	"time"

	"github.com/google/uuid"
	"github.com/regtrace/regtrace/pkg/types"
)

// ResolutionOption is one remediation path offered for a gap
type ResolutionOption struct {
	// Option type selected by the caller
	Type string `json:"type"`

	// Human-readable description of the remediation
	Description string `json:"description"`

	// Rough effort estimate for planning
	EffortEstimate string `json:"effort_estimate"`
}

// EvidenceRef points at a stored evidence object attached directly to a
// gap resolved without a control
type EvidenceRef struct {
	// Object key in the evidence store
	ObjectKey string `json:"object_key"`

	// Original file name
	FileName string `json:"file_name"`

	// Upload timestamp
	UploadedAt time.Time `json:"uploaded_at"`
}

// CustomGap is one requirement with missing or insufficient coverage
type CustomGap struct {
	// Unique identifier, stable across recalculation passes
	ID string `json:"id"`

	// Requirement the gap was identified for
	RequirementID string `json:"requirement_id"`

	// Requirement code, denormalized for display
	RequirementCode string `json:"requirement_code"`

	// Framework version the requirement belongs to
	FrameworkVersionID string `json:"framework_version_id"`

	// Kind of gap
	GapType types.GapType `json:"gap_type"`

	// Severity from the keyword heuristics or coverage thresholds
	Severity types.Severity `json:"severity"`

	// Aggregate coverage at identification time; 0 for unmapped requirements
	Coverage int `json:"coverage"`

	// Lifecycle status, preserved across recalculation passes
	Status types.GapStatus `json:"status"`

	// Free-text notes, preserved across recalculation passes
	Notes string `json:"notes,omitempty"`

	// Fixed ordered remediation templates
	ResolutionOptions []ResolutionOption `json:"resolution_options"`

	// Evidence attached when a gap is resolved without a control
	DirectEvidence []EvidenceRef `json:"direct_evidence,omitempty"`

	// First identification timestamp
	IdentifiedAt time.Time `json:"identified_at"`

	// Last recalculation or status change
	UpdatedAt time.Time `json:"updated_at"`
}

func newGap(requirementID, requirementCode, frameworkVersionID string,
	gapType types.GapType, severity types.Severity, coverage int) *CustomGap {

	now := time.Now().UTC()
	return &CustomGap{
		ID:                 uuid.NewString(),
		RequirementID:      requirementID,
		RequirementCode:    requirementCode,
		FrameworkVersionID: frameworkVersionID,
		GapType:            gapType,
		Severity:           severity,
		Coverage:           coverage,
		Status:             types.GapStatusIdentified,
		ResolutionOptions:  resolutionTemplates(),
		IdentifiedAt:       now,
		UpdatedAt:          now,
	}
}

// resolutionTemplates returns the fixed ordered remediation templates.
// The order is part of the contract; callers index into it.
func resolutionTemplates() []ResolutionOption {
	return []ResolutionOption{
		{
			Type:           "create_control",
			Description:    "Create a new internal control implementing the requirement",
			EffortEstimate: "2-6 weeks",
		},
		{
			Type:           "upload_evidence",
			Description:    "Attach direct evidence demonstrating the requirement is already met",
			EffortEstimate: "1-3 days",
		},
		{
			Type:           "create_policy",
			Description:    "Author a policy or procedure document covering the requirement",
			EffortEstimate: "1-2 weeks",
		},
		{
			Type:           "compensating_control",
			Description:    "Map a compensating control with documented justification",
			EffortEstimate: "1-2 weeks",
		},
		{
			Type:           "accept_risk",
			Description:    "Formally accept the risk with sign-off",
			EffortEstimate: "1-3 days",
		},
	}
}
