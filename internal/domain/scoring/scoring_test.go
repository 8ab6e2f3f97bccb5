package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/regtrace/regtrace/internal/domain/control"
	"github.com/regtrace/regtrace/internal/domain/crosswalk"
	"github.com/regtrace/regtrace/pkg/types"
)

func mapping(controlID, reqCode string, coverage int) *crosswalk.Mapping {
	return &crosswalk.Mapping{
		ID:                 controlID + ":" + reqCode,
		ControlID:          controlID,
		RequirementCode:    reqCode,
		Strength:           types.MappingPartial,
		CoveragePercentage: coverage,
		DriftStatus:        types.DriftStatusCurrent,
	}
}

func answerMap(values map[string]types.AnswerValue) AnswerFunc {
	return func(controlID string) (types.AnswerValue, bool) {
		v, ok := values[controlID]
		return v, ok
	}
}

func TestAggregateCoverage(t *testing.T) {
	t.Run("no mappings yields zero", func(t *testing.T) {
		assert.Equal(t, 0, AggregateCoverage(nil))
	})

	t.Run("single mapping passes through", func(t *testing.T) {
		got := AggregateCoverage([]*crosswalk.Mapping{mapping("C-1", "R-1", 60)})
		assert.Equal(t, 60, got)
	})

	t.Run("two partials stack with diminishing returns", func(t *testing.T) {
		// 60 then 50 * (1 - 0.6) = 60 + 20 = 80
		got := AggregateCoverage([]*crosswalk.Mapping{
			mapping("C-1", "R-1", 50),
			mapping("C-2", "R-1", 60),
		})
		assert.Equal(t, 80, got)
	})

	t.Run("order of input does not matter", func(t *testing.T) {
		a := AggregateCoverage([]*crosswalk.Mapping{
			mapping("C-1", "R-1", 30),
			mapping("C-2", "R-1", 70),
			mapping("C-3", "R-1", 50),
		})
		b := AggregateCoverage([]*crosswalk.Mapping{
			mapping("C-3", "R-1", 50),
			mapping("C-1", "R-1", 30),
			mapping("C-2", "R-1", 70),
		})
		assert.Equal(t, a, b)
	})

	t.Run("never exceeds 100", func(t *testing.T) {
		got := AggregateCoverage([]*crosswalk.Mapping{
			mapping("C-1", "R-1", 100),
			mapping("C-2", "R-1", 90),
			mapping("C-3", "R-1", 80),
		})
		assert.Equal(t, 100, got)
	})

	t.Run("adding a mapping never lowers coverage", func(t *testing.T) {
		base := []*crosswalk.Mapping{mapping("C-1", "R-1", 40), mapping("C-2", "R-1", 25)}
		before := AggregateCoverage(base)
		after := AggregateCoverage(append(base, mapping("C-3", "R-1", 10)))
		assert.GreaterOrEqual(t, after, before)
	})
}

func TestFrameworkPercentage(t *testing.T) {
	t.Run("satisfied when any mapped control is implemented", func(t *testing.T) {
		mappings := []*crosswalk.Mapping{
			mapping("C-1", "R-1", 50),
			mapping("C-2", "R-1", 50),
			mapping("C-3", "R-2", 80),
		}
		answers := answerMap(map[string]types.AnswerValue{
			"C-1": types.AnswerNo,
			"C-2": types.AnswerYes,
			"C-3": types.AnswerPartial,
		})

		got := FrameworkPercentage("v1", mappings, answers)
		assert.Equal(t, 2, got.MappedRequirements)
		assert.Equal(t, 1, got.SatisfiedRequirements)
		assert.Equal(t, 0, got.ExcludedRequirements)
		assert.Equal(t, 50, got.Percentage)
	})

	t.Run("all-NA requirement leaves the denominator", func(t *testing.T) {
		mappings := []*crosswalk.Mapping{
			mapping("C-1", "R-1", 50),
			mapping("C-2", "R-2", 50),
		}
		answers := answerMap(map[string]types.AnswerValue{
			"C-1": types.AnswerNotApplicable,
			"C-2": types.AnswerYes,
		})

		got := FrameworkPercentage("v1", mappings, answers)
		assert.Equal(t, 1, got.ExcludedRequirements)
		assert.Equal(t, 1, got.SatisfiedRequirements)
		assert.Equal(t, 100, got.Percentage)
	})

	t.Run("everything NA yields zero not a panic", func(t *testing.T) {
		mappings := []*crosswalk.Mapping{mapping("C-1", "R-1", 50)}
		answers := answerMap(map[string]types.AnswerValue{"C-1": types.AnswerNotApplicable})

		got := FrameworkPercentage("v1", mappings, answers)
		assert.Equal(t, 0, got.Percentage)
		assert.Equal(t, 1, got.ExcludedRequirements)
	})

	t.Run("mixed NA does not exclude the requirement", func(t *testing.T) {
		mappings := []*crosswalk.Mapping{
			mapping("C-1", "R-1", 50),
			mapping("C-2", "R-1", 50),
		}
		answers := answerMap(map[string]types.AnswerValue{
			"C-1": types.AnswerNotApplicable,
			"C-2": types.AnswerNo,
		})

		got := FrameworkPercentage("v1", mappings, answers)
		assert.Equal(t, 0, got.ExcludedRequirements)
		assert.Equal(t, 0, got.Percentage)
	})

	t.Run("superseded mappings are ignored", func(t *testing.T) {
		superseded := mapping("C-1", "R-1", 100)
		superseded.Supersede("v2")
		got := FrameworkPercentage("v1", []*crosswalk.Mapping{superseded},
			answerMap(map[string]types.AnswerValue{"C-1": types.AnswerYes}))
		assert.Equal(t, 0, got.MappedRequirements)
	})
}

func TestGroupByDomain(t *testing.T) {
	controls := []*control.Control{
		{ID: "C-1", Domain: "access_control", RiskLevel: types.RiskHigh},
		{ID: "C-2", Domain: "access_control", RiskLevel: types.RiskMedium},
		{ID: "C-3", Domain: "encryption", RiskLevel: types.RiskCritical},
		{ID: "C-4", Domain: "encryption", RiskLevel: types.RiskLow},
	}
	mappings := []*crosswalk.Mapping{
		mapping("C-1", "R-1", 50),
		mapping("C-2", "R-1", 50),
		mapping("C-3", "R-2", 90),
	}
	answers := answerMap(map[string]types.AnswerValue{
		"C-1": types.AnswerYes,
		"C-2": types.AnswerNotApplicable,
		"C-3": types.AnswerNo,
	})

	got := GroupByDomain(mappings, controls, answers)
	assert.Len(t, got, 2)

	assert.Equal(t, "access_control", got[0].Domain)
	assert.Equal(t, 2, got[0].MappedControls)
	assert.Equal(t, 1, got[0].ExcludedControls)
	assert.Equal(t, 100, got[0].Percentage)

	// C-4 is unmapped and must not appear in the encryption tally
	assert.Equal(t, "encryption", got[1].Domain)
	assert.Equal(t, 1, got[1].MappedControls)
	assert.Equal(t, 0, got[1].Percentage)
}

func TestComputeWeightedScore(t *testing.T) {
	t.Run("weights skew the score toward high-risk controls", func(t *testing.T) {
		controls := []*control.Control{
			{ID: "C-1", RiskLevel: types.RiskCritical},
			{ID: "C-2", RiskLevel: types.RiskCritical},
			{ID: "C-3", RiskLevel: types.RiskHigh},
			{ID: "C-4", RiskLevel: types.RiskMedium},
			{ID: "C-5", RiskLevel: types.RiskLow},
		}
		answers := answerMap(map[string]types.AnswerValue{
			"C-1": types.AnswerYes,
			"C-2": types.AnswerYes,
			"C-3": types.AnswerNo,
			"C-4": types.AnswerYes,
			"C-5": types.AnswerNo,
		})

		got := ComputeWeightedScore(controls, answers)
		// (4+4+2) / (4+4+3+2+1) = 10/14
		assert.Equal(t, 71, got.Score)
		assert.Equal(t, 60, got.UnweightedScore)
		assert.Equal(t, []string{"C-3"}, got.HighGaps)
		assert.Empty(t, got.CriticalGaps)
	})

	t.Run("NA controls drop out of both sides", func(t *testing.T) {
		controls := []*control.Control{
			{ID: "C-1", RiskLevel: types.RiskCritical},
			{ID: "C-2", RiskLevel: types.RiskCritical},
		}
		answers := answerMap(map[string]types.AnswerValue{
			"C-1": types.AnswerYes,
			"C-2": types.AnswerNotApplicable,
		})

		got := ComputeWeightedScore(controls, answers)
		assert.Equal(t, 100, got.Score)
		assert.Equal(t, 1, got.Tiers[types.RiskCritical].NotApplicable)
		assert.Empty(t, got.CriticalGaps)
	})

	t.Run("unanswered critical control is a critical gap", func(t *testing.T) {
		controls := []*control.Control{{ID: "C-9", RiskLevel: types.RiskCritical}}
		got := ComputeWeightedScore(controls, answerMap(nil))
		assert.Equal(t, 0, got.Score)
		assert.Equal(t, []string{"C-9"}, got.CriticalGaps)
	})

	t.Run("empty control set scores zero", func(t *testing.T) {
		got := ComputeWeightedScore(nil, answerMap(nil))
		assert.Equal(t, 0, got.Score)
		assert.Equal(t, 0, got.UnweightedScore)
	})
}
