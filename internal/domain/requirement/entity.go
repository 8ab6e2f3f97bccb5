// Package requirement provides the versioned library of official
// regulatory requirements. Every requirement is owned by exactly one
// framework version; deleting the version invalidates its requirements.
package requirement

import (
	"time"

	"github.com/regtrace/regtrace/pkg/errors"
	"github.com/regtrace/regtrace/pkg/types"
)

// MasterRequirement is one official requirement scoped to a single
// framework version
type MasterRequirement struct {
	// Unique identifier
	ID string `json:"id"`

	// Owning framework version
	FrameworkVersionID string `json:"framework_version_id"`

	// Requirement code, unique within the version (e.g. "CC6.1", "A.8.24")
	RequirementCode string `json:"requirement_code"`

	// Short title
	Title string `json:"title"`

	// Official requirement text as published
	OfficialText string `json:"official_text"`

	// How binding the requirement is
	ImplementationLevel types.ImplementationLevel `json:"implementation_level"`

	// Evidence types auditors expect (e.g. "policy_document", "audit_log")
	RequiredEvidenceTypes []string `json:"required_evidence_types,omitempty"`

	// How often compliance must be re-verified
	VerificationFrequency types.VerificationFrequency `json:"verification_frequency"`

	// Risk weight on a 1-10 scale
	RiskWeight int `json:"risk_weight"`

	// Emerging technology tag (AI governance, post-quantum crypto, ...),
	// empty when the requirement is conventional
	EmergingTechCategory string `json:"emerging_tech_category,omitempty"`

	// Keywords for search and auto-mapping
	Keywords []string `json:"keywords,omitempty"`

	// When the requirement takes effect
	EffectiveDate time.Time `json:"effective_date"`

	// Creation timestamp
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the requirement's range-bound attributes
func (r *MasterRequirement) Validate() error {
	if r.RequirementCode == "" {
		return errors.ValidationError("requirement code is required")
	}
	if r.RiskWeight < 1 || r.RiskWeight > 10 {
		return errors.NewFromCode(errors.ErrRiskWeightOutOfRange).
			WithDetails("requirement_code", r.RequirementCode).
			WithDetails("risk_weight", r.RiskWeight)
	}
	if !r.ImplementationLevel.Valid() {
		return errors.ValidationErrorf("invalid implementation level %q", r.ImplementationLevel)
	}
	return nil
}

// HasEvidenceType reports whether the requirement already demands the
// given evidence type
func (r *MasterRequirement) HasEvidenceType(evidenceType string) bool {
	for _, et := range r.RequiredEvidenceTypes {
		if et == evidenceType {
			return true
		}
	}
	return false
}
