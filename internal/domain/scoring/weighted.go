package scoring

import (
	"math"
	"sort"

	"github.com/regtrace/regtrace/internal/domain/control"
	"github.com/regtrace/regtrace/pkg/types"
)

// TierTally counts controls at one risk tier by outcome
type TierTally struct {
	Total         int `json:"total"`
	Implemented   int `json:"implemented"`
	NotApplicable int `json:"not_applicable"`
}

// WeightedScore is the risk-weighted posture read model
type WeightedScore struct {
	// Sum of implemented weights over sum of applicable weights, as a
	// rounded percentage; 0 when nothing is applicable
	Score int `json:"score"`

	// Plain implemented/applicable percentage, ignoring weights
	UnweightedScore int `json:"unweighted_score"`

	// Per-tier tallies keyed by risk level
	Tiers map[types.RiskLevel]TierTally `json:"tiers"`

	// Unimplemented critical-risk control IDs, sorted
	CriticalGaps []string `json:"critical_gaps"`

	// Unimplemented high-risk control IDs, sorted
	HighGaps []string `json:"high_gaps"`
}

// ComputeWeightedScore scores the control set with risk weighting.
// Critical controls weigh 4, high 3, medium 2, low 1. N/A controls are
// excluded from both numerator and denominator but still tallied per
// tier; unanswered controls count as unimplemented.
func ComputeWeightedScore(controls []*control.Control, answers AnswerFunc) WeightedScore {
	result := WeightedScore{Tiers: make(map[types.RiskLevel]TierTally)}

	weightedNum, weightedDenom := 0, 0
	plainNum, plainDenom := 0, 0

	for _, c := range controls {
		tally := result.Tiers[c.RiskLevel]
		tally.Total++

		answer, answered := answers(c.ID)
		if answered && answer == types.AnswerNotApplicable {
			tally.NotApplicable++
			result.Tiers[c.RiskLevel] = tally
			continue
		}

		weight := c.RiskLevel.Weight()
		weightedDenom += weight
		plainDenom++

		if answered && answer.Implemented() {
			tally.Implemented++
			weightedNum += weight
			plainNum++
		} else {
			switch c.RiskLevel {
			case types.RiskCritical:
				result.CriticalGaps = append(result.CriticalGaps, c.ID)
			case types.RiskHigh:
				result.HighGaps = append(result.HighGaps, c.ID)
			}
		}
		result.Tiers[c.RiskLevel] = tally
	}

	if weightedDenom > 0 {
		result.Score = int(math.Round(float64(weightedNum) / float64(weightedDenom) * 100))
	}
	if plainDenom > 0 {
		result.UnweightedScore = int(math.Round(float64(plainNum) / float64(plainDenom) * 100))
	}
	sort.Strings(result.CriticalGaps)
	sort.Strings(result.HighGaps)
	return result
}
