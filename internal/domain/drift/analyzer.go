package drift

import (
	"strings"

	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/pkg/types"
)

// ChangeAnalysis is the outcome of evaluating one requirement
// transition against one control's recorded answer
type ChangeAnalysis struct {
	// HasDrift reports whether any rule matched
	HasDrift bool

	// DriftType from the last matching rule
	DriftType types.DriftType

	// Severity merged across matching rules by maximum
	Severity types.Severity

	// AnswerStillValid is true unless a rule forced it false
	AnswerStillValid bool

	// ValidityReason explains the verdict
	ValidityReason string
}

// strengtheningKeywords are obligation markers whose appearance in new
// text tightens the requirement.
var strengtheningKeywords = []string{"must", "shall", "required", "mandatory", "always", "all"}

// AnalyzeChange evaluates an old/new requirement pair against a
// control's existing answer. Rules run in a fixed order; the last
// matching rule sets the drift type, severities merge by maximum, and
// the emerging-technology rule runs last so it always wins the type and
// forces re-review. No rule ever errors; an unmatched case simply
// produces HasDrift=false.
func AnalyzeChange(oldReq, newReq *requirement.MasterRequirement, answer types.AnswerValue, answered bool) ChangeAnalysis {
	result := ChangeAnalysis{
		AnswerStillValid: true,
		ValidityReason:   "existing answer remains valid under the new version",
	}

	if oldReq.OfficialText != newReq.OfficialText && addsStrengtheningKeyword(oldReq.OfficialText, newReq.OfficialText) {
		result.HasDrift = true
		result.DriftType = types.DriftRequirementStrengthened
		result.Severity = types.MaxSeverity(result.Severity, types.SeverityHigh)
	}

	if levelEscalatedToMandatory(oldReq.ImplementationLevel, newReq.ImplementationLevel) {
		result.HasDrift = true
		result.DriftType = types.DriftRequirementStrengthened
		result.Severity = types.MaxSeverity(result.Severity, types.SeverityCritical)
		if answered && (answer == types.AnswerNo || answer == types.AnswerNotApplicable) {
			result.AnswerStillValid = false
			result.ValidityReason = "requirement became mandatory and the recorded answer does not implement it"
		}
	}

	if added := newEvidenceTypes(oldReq, newReq); len(added) > 0 {
		result.HasDrift = true
		result.DriftType = types.DriftEvidenceTypeChanged
		result.Severity = types.MaxSeverity(result.Severity, types.SeverityMedium)
	}

	if newReq.VerificationFrequency.StricterThan(oldReq.VerificationFrequency) {
		result.HasDrift = true
		result.DriftType = types.DriftVerificationFrequencyChanged
		result.Severity = types.MaxSeverity(result.Severity, types.SeverityMedium)
	}

	// A bare weight change is not drift on its own; it only escalates a
	// finding another rule already produced.
	if result.HasDrift && newReq.RiskWeight-oldReq.RiskWeight > 2 {
		result.Severity = types.MaxSeverity(result.Severity, types.SeverityHigh)
	}

	if oldReq.EmergingTechCategory == "" && newReq.EmergingTechCategory != "" {
		result.HasDrift = true
		result.DriftType = types.DriftTechnologySpecific
		result.Severity = types.MaxSeverity(result.Severity, types.SeverityHigh)
		result.AnswerStillValid = false
		result.ValidityReason = "new technology category requires human re-review of the recorded answer"
	}

	if !result.HasDrift {
		return ChangeAnalysis{AnswerStillValid: true}
	}
	return result
}

// addsStrengtheningKeyword reports whether the new text contains an
// obligation keyword the old text lacked. Matching is on whole words,
// case-insensitive.
func addsStrengtheningKeyword(oldText, newText string) bool {
	oldWords := wordSet(oldText)
	newWords := wordSet(newText)
	for _, kw := range strengtheningKeywords {
		if newWords[kw] && !oldWords[kw] {
			return true
		}
	}
	return false
}

func wordSet(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[strings.Trim(w, ".,;:()\"'")] = true
	}
	return words
}

func levelEscalatedToMandatory(prev, next types.ImplementationLevel) bool {
	if next != types.ImplementationMandatory {
		return false
	}
	return prev == types.ImplementationOptional || prev == types.ImplementationRecommended
}

// newEvidenceTypes returns evidence types required by the new version
// but not the old one.
func newEvidenceTypes(oldReq, newReq *requirement.MasterRequirement) []string {
	existing := make(map[string]bool, len(oldReq.RequiredEvidenceTypes))
	for _, et := range oldReq.RequiredEvidenceTypes {
		existing[et] = true
	}
	added := make([]string, 0)
	for _, et := range newReq.RequiredEvidenceTypes {
		if !existing[et] {
			added = append(added, et)
		}
	}
	return added
}
