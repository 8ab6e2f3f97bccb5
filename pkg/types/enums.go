// Package types provides enumeration type definitions shared across the
// regtrace platform. Enums implement String(), Valid(), and FromString()
// methods for type-safe conversions, and sql Valuer/Scanner where the
// value is persisted.
package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// ============================================================================
// Framework Version Lifecycle
// ============================================================================

// VersionStatus represents the lifecycle state of a framework version
type VersionStatus string

const (
	// VersionStatusDraft is an unpublished working revision
	VersionStatusDraft VersionStatus = "draft"

	// VersionStatusPublished is released but not yet the active baseline
	VersionStatusPublished VersionStatus = "published"

	// VersionStatusActive is the single current baseline of a framework
	VersionStatusActive VersionStatus = "active"

	// VersionStatusSuperseded was active until a newer version replaced it
	VersionStatusSuperseded VersionStatus = "superseded"

	// VersionStatusRetired is withdrawn and no longer auditable against
	VersionStatusRetired VersionStatus = "retired"
)

// String returns the string representation
func (vs VersionStatus) String() string {
	return string(vs)
}

// Valid checks if the version status is valid
func (vs VersionStatus) Valid() bool {
	switch vs {
	case VersionStatusDraft, VersionStatusPublished, VersionStatusActive,
		VersionStatusSuperseded, VersionStatusRetired:
		return true
	default:
		return false
	}
}

// FromStringVersionStatus converts string to VersionStatus
func FromStringVersionStatus(s string) (VersionStatus, error) {
	vs := VersionStatus(strings.ToLower(s))
	if !vs.Valid() {
		return "", fmt.Errorf("invalid version status: %s", s)
	}
	return vs, nil
}

// Value implements driver.Valuer for database storage
func (vs VersionStatus) Value() (driver.Value, error) {
	return string(vs), nil
}

// Scan implements sql.Scanner for database retrieval
func (vs *VersionStatus) Scan(value interface{}) error {
	if value == nil {
		*vs = ""
		return nil
	}
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("cannot scan type %T into VersionStatus", value)
	}
	parsed, err := FromStringVersionStatus(str)
	if err != nil {
		return err
	}
	*vs = parsed
	return nil
}

// ============================================================================
// Requirement Attributes
// ============================================================================

// ImplementationLevel represents how binding an official requirement is
type ImplementationLevel string

const (
	// ImplementationMandatory requirements must be satisfied
	ImplementationMandatory ImplementationLevel = "mandatory"

	// ImplementationRecommended requirements should be satisfied
	ImplementationRecommended ImplementationLevel = "recommended"

	// ImplementationOptional requirements may be satisfied
	ImplementationOptional ImplementationLevel = "optional"

	// ImplementationConditional requirements apply only under stated conditions
	ImplementationConditional ImplementationLevel = "conditional"
)

// String returns the string representation
func (il ImplementationLevel) String() string {
	return string(il)
}

// Valid checks if the implementation level is valid
func (il ImplementationLevel) Valid() bool {
	switch il {
	case ImplementationMandatory, ImplementationRecommended,
		ImplementationOptional, ImplementationConditional:
		return true
	default:
		return false
	}
}

// FromStringImplementationLevel converts string to ImplementationLevel
func FromStringImplementationLevel(s string) (ImplementationLevel, error) {
	il := ImplementationLevel(strings.ToLower(s))
	if !il.Valid() {
		return "", fmt.Errorf("invalid implementation level: %s", s)
	}
	return il, nil
}

// VerificationFrequency represents how often compliance must be re-verified.
// The ordering once < annual < semi_annual < quarterly < monthly < continuous
// is significant: a move to a higher rank is a stricter obligation.
type VerificationFrequency string

const (
	FrequencyOnce       VerificationFrequency = "once"
	FrequencyAnnual     VerificationFrequency = "annual"
	FrequencySemiAnnual VerificationFrequency = "semi_annual"
	FrequencyQuarterly  VerificationFrequency = "quarterly"
	FrequencyMonthly    VerificationFrequency = "monthly"
	FrequencyContinuous VerificationFrequency = "continuous"
)

var frequencyRanks = map[VerificationFrequency]int{
	FrequencyOnce:       0,
	FrequencyAnnual:     1,
	FrequencySemiAnnual: 2,
	FrequencyQuarterly:  3,
	FrequencyMonthly:    4,
	FrequencyContinuous: 5,
}

// String returns the string representation
func (vf VerificationFrequency) String() string {
	return string(vf)
}

// Valid checks if the verification frequency is valid
func (vf VerificationFrequency) Valid() bool {
	_, ok := frequencyRanks[vf]
	return ok
}

// Rank returns the position of the frequency on the strictness scale.
// Unknown values rank lowest so malformed data never reads as stricter.
func (vf VerificationFrequency) Rank() int {
	if rank, ok := frequencyRanks[vf]; ok {
		return rank
	}
	return 0
}

// StricterThan reports whether vf demands more frequent verification than other
func (vf VerificationFrequency) StricterThan(other VerificationFrequency) bool {
	return vf.Rank() > other.Rank()
}

// ============================================================================
// Risk and Severity
// ============================================================================

// RiskLevel represents the inherent risk tier of a control
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskWeights = map[RiskLevel]int{
	RiskCritical: 4,
	RiskHigh:     3,
	RiskMedium:   2,
	RiskLow:      1,
}

// String returns the string representation
func (rl RiskLevel) String() string {
	return string(rl)
}

// Valid checks if the risk level is valid
func (rl RiskLevel) Valid() bool {
	_, ok := riskWeights[rl]
	return ok
}

// Weight returns the scoring weight of the risk tier (critical=4 .. low=1).
// Unknown tiers weigh 1 so a malformed control never dominates a score.
func (rl RiskLevel) Weight() int {
	if w, ok := riskWeights[rl]; ok {
		return w
	}
	return 1
}

// Severity represents how serious a finding (gap or drift) is
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRanks = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// String returns the string representation
func (s Severity) String() string {
	return string(s)
}

// Valid checks if the severity is valid
func (s Severity) Valid() bool {
	_, ok := severityRanks[s]
	return ok
}

// Rank returns the ordering position of the severity
func (s Severity) Rank() int {
	return severityRanks[s]
}

// MaxSeverity returns the more severe of a and b
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ============================================================================
// Crosswalk Mapping
// ============================================================================

// MappingStrength represents how directly a control implements a requirement
type MappingStrength string

const (
	// MappingDirect controls implement the requirement on their own
	MappingDirect MappingStrength = "direct"

	// MappingPartial controls implement part of the requirement
	MappingPartial MappingStrength = "partial"

	// MappingSupportive controls assist but do not implement the requirement
	MappingSupportive MappingStrength = "supportive"
)

// String returns the string representation
func (ms MappingStrength) String() string {
	return string(ms)
}

// Valid checks if the mapping strength is valid
func (ms MappingStrength) Valid() bool {
	switch ms {
	case MappingDirect, MappingPartial, MappingSupportive:
		return true
	default:
		return false
	}
}

// DriftStatus represents the drift state of a crosswalk mapping. It is
// mutated only by the drift engine, never by direct user edits.
type DriftStatus string

const (
	DriftStatusCurrent     DriftStatus = "current"
	DriftStatusAtRisk      DriftStatus = "at_risk"
	DriftStatusDrifted     DriftStatus = "drifted"
	DriftStatusInvalidated DriftStatus = "invalidated"
)

// String returns the string representation
func (ds DriftStatus) String() string {
	return string(ds)
}

// Valid checks if the drift status is valid
func (ds DriftStatus) Valid() bool {
	switch ds {
	case DriftStatusCurrent, DriftStatusAtRisk, DriftStatusDrifted, DriftStatusInvalidated:
		return true
	default:
		return false
	}
}

// ============================================================================
// Compliance Drift Records
// ============================================================================

// DriftType classifies the kind of regulatory drift detected
type DriftType string

const (
	// DriftRequirementStrengthened marks text or level changes that tighten an obligation
	DriftRequirementStrengthened DriftType = "requirement_strengthened"

	// DriftEvidenceTypeChanged marks newly required evidence types
	DriftEvidenceTypeChanged DriftType = "evidence_type_changed"

	// DriftVerificationFrequencyChanged marks a stricter verification cadence
	DriftVerificationFrequencyChanged DriftType = "verification_frequency_changed"

	// DriftTechnologySpecific marks requirements entering an emerging-technology category
	DriftTechnologySpecific DriftType = "technology_specific"

	// DriftNewRequirement marks requirements with no counterpart in the prior version
	DriftNewRequirement DriftType = "new_requirement"
)

// String returns the string representation
func (dt DriftType) String() string {
	return string(dt)
}

// Valid checks if the drift type is valid
func (dt DriftType) Valid() bool {
	switch dt {
	case DriftRequirementStrengthened, DriftEvidenceTypeChanged,
		DriftVerificationFrequencyChanged, DriftTechnologySpecific, DriftNewRequirement:
		return true
	default:
		return false
	}
}

// DriftRecordStatus represents the resolution lifecycle of a drift record
type DriftRecordStatus string

const (
	DriftRecordDetected     DriftRecordStatus = "detected"
	DriftRecordAcknowledged DriftRecordStatus = "acknowledged"
	DriftRecordInReview     DriftRecordStatus = "in_review"
	DriftRecordResolved     DriftRecordStatus = "resolved"
	DriftRecordAcceptedRisk DriftRecordStatus = "accepted_risk"
)

// String returns the string representation
func (s DriftRecordStatus) String() string {
	return string(s)
}

// Valid checks if the drift record status is valid
func (s DriftRecordStatus) Valid() bool {
	switch s {
	case DriftRecordDetected, DriftRecordAcknowledged, DriftRecordInReview,
		DriftRecordResolved, DriftRecordAcceptedRisk:
		return true
	default:
		return false
	}
}

// Open reports whether the record still needs attention
func (s DriftRecordStatus) Open() bool {
	return s == DriftRecordDetected || s == DriftRecordAcknowledged || s == DriftRecordInReview
}

// ============================================================================
// Custom Gaps
// ============================================================================

// GapType classifies why a requirement is considered uncovered
type GapType string

const (
	GapNoControlMapped       GapType = "no_control_mapped"
	GapInsufficientCoverage  GapType = "insufficient_coverage"
	GapControlNotImplemented GapType = "control_not_implemented"
	GapEvidenceMissing       GapType = "evidence_missing"
)

// String returns the string representation
func (gt GapType) String() string {
	return string(gt)
}

// Valid checks if the gap type is valid
func (gt GapType) Valid() bool {
	switch gt {
	case GapNoControlMapped, GapInsufficientCoverage, GapControlNotImplemented, GapEvidenceMissing:
		return true
	default:
		return false
	}
}

// GapStatus represents the remediation lifecycle of a gap
type GapStatus string

const (
	GapStatusIdentified   GapStatus = "identified"
	GapStatusAcknowledged GapStatus = "acknowledged"
	GapStatusInProgress   GapStatus = "in_progress"
	GapStatusResolved     GapStatus = "resolved"
	GapStatusAcceptedRisk GapStatus = "accepted_risk"
)

// String returns the string representation
func (gs GapStatus) String() string {
	return string(gs)
}

// Valid checks if the gap status is valid
func (gs GapStatus) Valid() bool {
	switch gs {
	case GapStatusIdentified, GapStatusAcknowledged, GapStatusInProgress,
		GapStatusResolved, GapStatusAcceptedRisk:
		return true
	default:
		return false
	}
}

// Open reports whether the gap still needs attention
func (gs GapStatus) Open() bool {
	return gs == GapStatusIdentified || gs == GapStatusAcknowledged || gs == GapStatusInProgress
}

// ============================================================================
// Control Answers
// ============================================================================

// AnswerValue represents the current assessment answer for a control
type AnswerValue string

const (
	AnswerYes           AnswerValue = "yes"
	AnswerNo            AnswerValue = "no"
	AnswerPartial       AnswerValue = "partial"
	AnswerNotApplicable AnswerValue = "na"
)

// String returns the string representation
func (av AnswerValue) String() string {
	return string(av)
}

// Valid checks if the answer value is valid
func (av AnswerValue) Valid() bool {
	switch av {
	case AnswerYes, AnswerNo, AnswerPartial, AnswerNotApplicable:
		return true
	default:
		return false
	}
}

// Implemented reports whether the answer counts as an implemented control
func (av AnswerValue) Implemented() bool {
	return av == AnswerYes
}

// NormalizeAnswer maps questionnaire vocabulary onto the engine's answer
// set. Unknown values pass through unchanged and simply never satisfy
// anything, matching the best-effort contract for classifier inputs.
func NormalizeAnswer(s string) AnswerValue {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "implemented", "true":
		return AnswerYes
	case "no", "not_implemented", "false":
		return AnswerNo
	case "partial", "partially_implemented":
		return AnswerPartial
	case "na", "n/a", "not_applicable":
		return AnswerNotApplicable
	default:
		return AnswerValue(strings.ToLower(strings.TrimSpace(s)))
	}
}
