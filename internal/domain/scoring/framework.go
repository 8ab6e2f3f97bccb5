package scoring

import (
	"math"

	"github.com/regtrace/regtrace/internal/domain/crosswalk"
	"github.com/regtrace/regtrace/pkg/types"
)

// AnswerFunc resolves the current answer for a control. ok=false means
// the control is unanswered, which never satisfies a requirement and
// never excludes it.
type AnswerFunc func(controlID string) (types.AnswerValue, bool)

// FrameworkSummary is the per-framework coverage read model
type FrameworkSummary struct {
	// Framework version the summary was computed for
	FrameworkVersionID string `json:"framework_version_id"`

	// Requirement codes mapped by at least one control
	MappedRequirements int `json:"mapped_requirements"`

	// Requirements excluded because every mapped control answered N/A
	ExcludedRequirements int `json:"excluded_requirements"`

	// Requirements satisfied by at least one implemented control
	SatisfiedRequirements int `json:"satisfied_requirements"`

	// Satisfied / (mapped - excluded), rounded; 0 when the denominator is 0
	Percentage int `json:"percentage"`

	// Aggregate coverage per requirement code
	CoverageByRequirement map[string]int `json:"coverage_by_requirement"`
}

// FrameworkPercentage computes the per-framework compliance percentage
// over the version's current mappings.
//
// A requirement counts as satisfied when at least one mapped control is
// answered yes. A requirement is excluded from the denominator entirely
// when every mapped control answered N/A. Excluded requirements count
// toward neither side of the ratio.
func FrameworkPercentage(frameworkVersionID string, mappings []*crosswalk.Mapping, answers AnswerFunc) FrameworkSummary {
	byCode := make(map[string][]*crosswalk.Mapping)
	for _, m := range mappings {
		if !m.Current() {
			continue
		}
		byCode[m.RequirementCode] = append(byCode[m.RequirementCode], m)
	}

	summary := FrameworkSummary{
		FrameworkVersionID:    frameworkVersionID,
		MappedRequirements:    len(byCode),
		CoverageByRequirement: make(map[string]int, len(byCode)),
	}

	for code, reqMappings := range byCode {
		summary.CoverageByRequirement[code] = AggregateCoverage(reqMappings)

		satisfied := false
		allNA := true
		for _, m := range reqMappings {
			answer, ok := answers(m.ControlID)
			if !ok {
				allNA = false
				continue
			}
			if answer != types.AnswerNotApplicable {
				allNA = false
			}
			if answer.Implemented() {
				satisfied = true
			}
		}

		if allNA {
			summary.ExcludedRequirements++
			continue
		}
		if satisfied {
			summary.SatisfiedRequirements++
		}
	}

	denominator := summary.MappedRequirements - summary.ExcludedRequirements
	if denominator > 0 {
		summary.Percentage = int(math.Round(float64(summary.SatisfiedRequirements) / float64(denominator) * 100))
	}
	return summary
}
