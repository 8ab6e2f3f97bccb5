// Package drift implements the compliance-drift detection engine. Drift
// records are findings produced by version-activation scans; they are
// never created by users and never deleted, only status-transitioned.
package drift

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/regtrace/regtrace/pkg/types"
)

// ResolutionOption is one proposed path for resolving a drift finding
type ResolutionOption struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ComplianceDrift is one finding for a (control, requirement) pair
// affected by a framework version transition
type ComplianceDrift struct {
	// Unique identifier
	ID string `json:"id"`

	// Control affected by the change
	ControlID string `json:"control_id"`

	// Crosswalk mapping affected; empty for new-requirement findings
	MappingID string `json:"mapping_id,omitempty"`

	// Requirement in the new version
	RequirementID string `json:"requirement_id"`

	// Requirement code, denormalized for display
	RequirementCode string `json:"requirement_code"`

	// Version pair the scan ran against
	OldFrameworkVersionID string `json:"old_framework_version_id"`
	NewFrameworkVersionID string `json:"new_framework_version_id"`

	// Kind of drift
	DriftType types.DriftType `json:"drift_type"`

	// Severity of the finding
	Severity types.Severity `json:"severity"`

	// Answer recorded against the control at scan time
	PreviousAnswer types.AnswerValue `json:"previous_answer,omitempty"`

	// Whether the recorded answer still holds under the new version
	AnswerStillValid bool `json:"answer_still_valid"`

	// Explanation of the validity verdict
	ValidityReason string `json:"validity_reason"`

	// Lifecycle status
	Status types.DriftRecordStatus `json:"status"`

	// Ordered resolution options offered to the caller
	ResolutionPath []ResolutionOption `json:"resolution_path"`

	// Deadline to regain compliance under the new version
	ComplianceDeadline time.Time `json:"compliance_deadline"`

	// Resolution stamp, set by Resolve
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy      string     `json:"resolved_by,omitempty"`
	ResolutionType  string     `json:"resolution_type,omitempty"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`

	// Detection timestamp
	DetectedAt time.Time `json:"detected_at"`

	// Last mutation timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

func newDrift(controlID, mappingID, requirementID, requirementCode,
	oldVersionID, newVersionID string, deadline time.Time) *ComplianceDrift {

	now := time.Now().UTC()
	return &ComplianceDrift{
		ID:                    uuid.NewString(),
		ControlID:             controlID,
		MappingID:             mappingID,
		RequirementID:         requirementID,
		RequirementCode:       requirementCode,
		OldFrameworkVersionID: oldVersionID,
		NewFrameworkVersionID: newVersionID,
		Status:                types.DriftRecordDetected,
		ComplianceDeadline:    deadline,
		DetectedAt:            now,
		UpdatedAt:             now,
	}
}

// DaysRemaining reports whole days until the compliance deadline,
// recomputed on every call. Past deadlines yield negative values.
func (d *ComplianceDrift) DaysRemaining(now time.Time) int {
	remaining := d.ComplianceDeadline.Sub(now)
	return int(math.Ceil(remaining.Hours() / 24))
}

// Open reports whether the finding still needs action
func (d *ComplianceDrift) Open() bool {
	return d.Status.Open()
}
