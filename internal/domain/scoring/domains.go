package scoring

import (
	"math"
	"sort"

	"github.com/regtrace/regtrace/internal/domain/control"
	"github.com/regtrace/regtrace/internal/domain/crosswalk"
	"github.com/regtrace/regtrace/pkg/types"
)

// DomainSummary reports implementation status for one control domain
type DomainSummary struct {
	Domain string `json:"domain"`

	// Controls in the domain that carry at least one current mapping
	MappedControls int `json:"mapped_controls"`

	// Controls excluded because their answer is N/A
	ExcludedControls int `json:"excluded_controls"`

	// Controls answered yes
	ImplementedControls int `json:"implemented_controls"`

	// Implemented / (mapped - excluded), rounded; 0 when the denominator is 0
	Percentage int `json:"percentage"`
}

// GroupByDomain rolls mapped controls up into per-domain implementation
// summaries. The N/A exclusion applies at control granularity here: an
// N/A control drops out of its domain's denominator. Domains are
// returned in name order.
func GroupByDomain(mappings []*crosswalk.Mapping, controls []*control.Control, answers AnswerFunc) []DomainSummary {
	mapped := make(map[string]bool)
	for _, m := range mappings {
		if m.Current() {
			mapped[m.ControlID] = true
		}
	}

	byDomain := make(map[string]*DomainSummary)
	for _, c := range controls {
		if !mapped[c.ID] {
			continue
		}
		summary := byDomain[c.Domain]
		if summary == nil {
			summary = &DomainSummary{Domain: c.Domain}
			byDomain[c.Domain] = summary
		}
		summary.MappedControls++

		answer, ok := answers(c.ID)
		if !ok {
			continue
		}
		switch {
		case answer == types.AnswerNotApplicable:
			summary.ExcludedControls++
		case answer.Implemented():
			summary.ImplementedControls++
		}
	}

	out := make([]DomainSummary, 0, len(byDomain))
	for _, summary := range byDomain {
		denominator := summary.MappedControls - summary.ExcludedControls
		if denominator > 0 {
			summary.Percentage = int(math.Round(float64(summary.ImplementedControls) / float64(denominator) * 100))
		}
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}
