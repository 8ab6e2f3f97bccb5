package compare

import (
	"context"
	"sort"

	"github.com/regtrace/regtrace/internal/domain/control"
	"github.com/regtrace/regtrace/internal/domain/crosswalk"
	"github.com/regtrace/regtrace/internal/domain/drift"
	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/pkg/errors"
	"github.com/regtrace/regtrace/pkg/types"
)

// ChangeType classifies how a requirement moved between versions
type ChangeType string

const (
	ChangeAdded     ChangeType = "added"
	ChangeModified  ChangeType = "modified"
	ChangeUnchanged ChangeType = "unchanged"
)

// ComplianceStatus is the derived compliance verdict on a comparison
type ComplianceStatus string

const (
	StatusUnknown      ComplianceStatus = "unknown"
	StatusCompliant    ComplianceStatus = "compliant"
	StatusPartial      ComplianceStatus = "partial"
	StatusNonCompliant ComplianceStatus = "non_compliant"
	StatusAtRisk       ComplianceStatus = "at_risk"
	StatusNeedsReview  ComplianceStatus = "needs_review"
)

// Comparison is the side-by-side record rendered for one requirement
// transition
type Comparison struct {
	RequirementCode string `json:"requirement_code"`
	OldVersionID    string `json:"old_version_id"`
	NewVersionID    string `json:"new_version_id"`

	ChangeType     ChangeType     `json:"change_type"`
	ChangeSeverity types.Severity `json:"change_severity,omitempty"`

	OldText string        `json:"old_text,omitempty"`
	NewText string        `json:"new_text"`
	Diff    []DiffSegment `json:"diff"`

	// Controls mapped to the old requirement, sorted
	AffectedControls []string `json:"affected_controls"`

	CurrentComplianceStatus   ComplianceStatus `json:"current_compliance_status"`
	ProjectedComplianceStatus ComplianceStatus `json:"projected_compliance_status"`
}

// Comparator builds comparison records from the requirement catalog and
// the crosswalk
type Comparator struct {
	library  requirement.Library
	mappings crosswalk.Repository
	answers  control.AnswerLookup
}

// NewComparator creates a version comparator
func NewComparator(library requirement.Library, mappings crosswalk.Repository, answers control.AnswerLookup) *Comparator {
	return &Comparator{library: library, mappings: mappings, answers: answers}
}

// Compare builds the comparison record for one requirement code across
// a version pair. The requirement may be absent from the old version,
// which yields an added record; it must exist in the new version.
func (c *Comparator) Compare(ctx context.Context, code, oldVersionID, newVersionID string) (*Comparison, error) {
	newReqs, err := c.library.RequirementsForVersion(ctx, newVersionID)
	if err != nil {
		return nil, err
	}
	newReq, ok := newReqs[code]
	if !ok {
		return nil, errors.NewFromCode(errors.ErrRequirementNotFound).
			WithDetails("requirement_code", code).
			WithDetails("framework_version_id", newVersionID)
	}

	oldReqs, err := c.library.RequirementsForVersion(ctx, oldVersionID)
	if err != nil {
		return nil, err
	}
	oldReq := oldReqs[code]

	result := &Comparison{
		RequirementCode: code,
		OldVersionID:    oldVersionID,
		NewVersionID:    newVersionID,
		NewText:         newReq.OfficialText,
	}

	if oldReq == nil {
		result.ChangeType = ChangeAdded
		result.ChangeSeverity = drift.NewRequirementSeverity(newReq)
		result.Diff = WordDiff("", newReq.OfficialText)
		result.CurrentComplianceStatus = StatusUnknown
		result.ProjectedComplianceStatus = StatusNeedsReview
		return result, nil
	}

	result.OldText = oldReq.OfficialText
	result.Diff = WordDiff(oldReq.OfficialText, newReq.OfficialText)

	analysis := drift.AnalyzeChange(oldReq, newReq, "", false)
	if analysis.HasDrift {
		result.ChangeType = ChangeModified
		result.ChangeSeverity = analysis.Severity
	} else if oldReq.OfficialText != newReq.OfficialText {
		result.ChangeType = ChangeModified
		result.ChangeSeverity = types.SeverityLow
	} else {
		result.ChangeType = ChangeUnchanged
	}

	verdicts, affected, err := c.controlVerdicts(ctx, oldReq, newReq)
	if err != nil {
		return nil, err
	}
	result.AffectedControls = affected
	result.CurrentComplianceStatus = currentStatus(verdicts)
	result.ProjectedComplianceStatus = projectedStatus(verdicts)
	return result, nil
}

// controlVerdict is one affected control's answer and projected validity
type controlVerdict struct {
	answer     types.AnswerValue
	answered   bool
	stillValid bool
}

func (c *Comparator) controlVerdicts(ctx context.Context, oldReq, newReq *requirement.MasterRequirement) ([]controlVerdict, []string, error) {
	mappings, err := c.mappings.ListByRequirement(ctx, oldReq.ID)
	if err != nil {
		return nil, nil, err
	}

	verdicts := make([]controlVerdict, 0, len(mappings))
	affected := make([]string, 0, len(mappings))
	for _, m := range mappings {
		if !m.Current() {
			continue
		}
		affected = append(affected, m.ControlID)

		var value types.AnswerValue
		answer, answered := c.answers.Answer(ctx, m.ControlID)
		if answered {
			value = answer.Value
		}
		analysis := drift.AnalyzeChange(oldReq, newReq, value, answered)
		verdicts = append(verdicts, controlVerdict{
			answer:     value,
			answered:   answered,
			stillValid: analysis.AnswerStillValid,
		})
	}
	sort.Strings(affected)
	return verdicts, affected, nil
}

// currentStatus derives the as-is verdict from the recorded answers
// alone: compliant when every affected control answered yes, partial
// when some did and none failed outright, non_compliant otherwise, and
// unknown when no controls are affected.
func currentStatus(verdicts []controlVerdict) ComplianceStatus {
	if len(verdicts) == 0 {
		return StatusUnknown
	}

	yes, no := 0, 0
	for _, v := range verdicts {
		switch {
		case v.answered && v.answer == types.AnswerYes:
			yes++
		case v.answered && v.answer == types.AnswerNo:
			no++
		}
	}
	switch {
	case yes == len(verdicts):
		return StatusCompliant
	case yes > 0 && no == 0:
		return StatusPartial
	default:
		return StatusNonCompliant
	}
}

// projectedStatus derives the after-transition verdict: compliant when
// every affected control's answer is yes and remains valid, at_risk
// when at least one is, non_compliant when any answer was invalidated,
// needs_review otherwise.
func projectedStatus(verdicts []controlVerdict) ComplianceStatus {
	if len(verdicts) == 0 {
		return StatusNeedsReview
	}

	validYes, invalid := 0, 0
	for _, v := range verdicts {
		if !v.stillValid {
			invalid++
			continue
		}
		if v.answered && v.answer == types.AnswerYes {
			validYes++
		}
	}
	switch {
	case validYes == len(verdicts):
		return StatusCompliant
	case validYes > 0:
		return StatusAtRisk
	case invalid > 0:
		return StatusNonCompliant
	default:
		return StatusNeedsReview
	}
}
