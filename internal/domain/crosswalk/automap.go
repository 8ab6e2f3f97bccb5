// Package crosswalk provides the keyword auto-mapper used when a new
// framework version introduces requirements with no prior counterpart.
// The overlap score is a best-effort heuristic, never an error source.
package crosswalk

import (
	"sort"
	"strings"

	"github.com/regtrace/regtrace/internal/domain/control"
	"github.com/regtrace/regtrace/internal/domain/requirement"
)

// MatcherConfig holds the auto-mapper's tunable thresholds
type MatcherConfig struct {
	// OverlapThreshold is the minimum fraction of the requirement's
	// token set a control must share to be proposed
	OverlapThreshold float64

	// TopK caps how many candidate controls are kept per requirement
	TopK int
}

// CandidateMatch is one proposed control for a new requirement
type CandidateMatch struct {
	Control *control.Control
	// Overlap is the matched fraction of the requirement's token set
	Overlap float64
}

// Matcher proposes controls for requirements by keyword overlap
type Matcher struct {
	cfg MatcherConfig
}

// NewMatcher creates an auto-mapper with the given thresholds
func NewMatcher(cfg MatcherConfig) *Matcher {
	if cfg.OverlapThreshold <= 0 {
		cfg.OverlapThreshold = 0.30
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &Matcher{cfg: cfg}
}

// Match ranks controls by overlap between their keyword/title tokens and
// the requirement's keyword/title tokens, keeping those at or above the
// threshold, descending, capped at TopK. Ties break on control ID so the
// ranking is deterministic.
func (m *Matcher) Match(req *requirement.MasterRequirement, controls []*control.Control) []CandidateMatch {
	reqTokens := tokenSet(append([]string{req.Title}, req.Keywords...))
	if len(reqTokens) == 0 {
		return nil
	}

	candidates := make([]CandidateMatch, 0)
	for _, c := range controls {
		ctrlTokens := tokenSet(append([]string{c.Title}, c.Keywords...))
		shared := 0
		for tok := range ctrlTokens {
			if reqTokens[tok] {
				shared++
			}
		}
		overlap := float64(shared) / float64(len(reqTokens))
		if overlap >= m.cfg.OverlapThreshold {
			candidates = append(candidates, CandidateMatch{Control: c, Overlap: overlap})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Overlap != candidates[j].Overlap {
			return candidates[i].Overlap > candidates[j].Overlap
		}
		return candidates[i].Control.ID < candidates[j].Control.ID
	})

	if len(candidates) > m.cfg.TopK {
		candidates = candidates[:m.cfg.TopK]
	}
	return candidates
}

// tokenSet lowercases and splits phrases into a token set, dropping
// one-character fragments and a handful of stop words that would inflate
// overlap scores.
func tokenSet(phrases []string) map[string]bool {
	tokens := make(map[string]bool)
	for _, phrase := range phrases {
		for _, tok := range strings.FieldsFunc(strings.ToLower(phrase), func(r rune) bool {
			return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
		}) {
			if len(tok) < 2 || stopWords[tok] {
				continue
			}
			tokens[tok] = true
		}
	}
	return tokens
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "of": true,
	"for": true, "to": true, "in": true, "on": true, "with": true,
	"or": true, "be": true, "is": true, "are": true,
}
