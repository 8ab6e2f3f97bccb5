// Package scoring implements the coverage and scoring engine: coverage
// aggregation with diminishing returns, per-framework percentages with
// the N/A exclusion rule, per-domain grouping, and risk-weighted scores.
// Everything here is a pure function over in-memory inputs; callers load
// state from the repositories and pass snapshots in.
package scoring

import (
	"math"
	"sort"

	"github.com/regtrace/regtrace/internal/domain/crosswalk"
)

// AggregateCoverage folds a requirement's mappings into a single 0-100
// coverage figure. Mappings stack with diminishing returns so multiple
// partial controls never double-count overlapping protection:
//
//	coverage += mapping.coverage * (1 - coverage/100)
//
// Mappings are taken in descending coverage order; accumulation stops
// once coverage reaches 100. Zero mappings yield zero coverage.
func AggregateCoverage(mappings []*crosswalk.Mapping) int {
	if len(mappings) == 0 {
		return 0
	}

	sorted := make([]*crosswalk.Mapping, len(mappings))
	copy(sorted, mappings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CoveragePercentage > sorted[j].CoveragePercentage
	})

	coverage := 0.0
	for _, m := range sorted {
		contribution := float64(m.CoveragePercentage)
		if contribution < 0 {
			contribution = 0
		} else if contribution > 100 {
			contribution = 100
		}
		coverage += contribution * (1 - coverage/100)
		if coverage >= 100 {
			coverage = 100
			break
		}
	}

	if coverage < 0 {
		coverage = 0
	} else if coverage > 100 {
		coverage = 100
	}
	return int(math.Round(coverage))
}
