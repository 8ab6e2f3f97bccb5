package gap

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/regtrace/regtrace/internal/domain/crosswalk"
	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/internal/domain/scoring"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/pkg/types"
)

// DetectorConfig holds the coverage thresholds for gap identification
type DetectorConfig struct {
	// CoverageThreshold is the aggregate coverage below which a mapped
	// requirement still counts as a gap
	CoverageThreshold int

	// HighSeverityCoverage is the coverage below which an
	// insufficient-coverage gap is high severity instead of medium
	HighSeverityCoverage int
}

// Detector recomputes a framework version's gap records from the
// crosswalk state
type Detector struct {
	gaps   Repository
	cfg    DetectorConfig
	logger logging.Logger
}

// NewDetector creates a gap detector
func NewDetector(gaps Repository, cfg DetectorConfig, logger logging.Logger) *Detector {
	if cfg.CoverageThreshold <= 0 {
		cfg.CoverageThreshold = 80
	}
	if cfg.HighSeverityCoverage <= 0 {
		cfg.HighSeverityCoverage = 50
	}
	return &Detector{gaps: gaps, cfg: cfg, logger: logger}
}

// Recalculate runs one full, deterministic pass over a framework
// version's requirements. Requirements with zero current mappings become
// no_control_mapped gaps; mapped requirements below the coverage
// threshold become insufficient_coverage gaps. A requirement that
// previously had a gap keeps that gap's ID, status, notes, and direct
// evidence; the version's records are then swapped in one atomic
// replace, so a failed pass leaves the prior state untouched and other
// framework versions' gaps are never disturbed.
func (d *Detector) Recalculate(ctx context.Context, frameworkVersionID string,
	requirements []*requirement.MasterRequirement, mappings []*crosswalk.Mapping) ([]*CustomGap, error) {

	byRequirement := make(map[string][]*crosswalk.Mapping)
	for _, m := range mappings {
		if m.Current() {
			byRequirement[m.RequirementID] = append(byRequirement[m.RequirementID], m)
		}
	}

	existing, err := d.gaps.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	prior := make(map[string]*CustomGap, len(existing))
	for _, g := range existing {
		prior[g.RequirementID] = g
	}

	next := make([]*CustomGap, 0)
	for _, req := range requirements {
		reqMappings := byRequirement[req.ID]

		var g *CustomGap
		switch {
		case len(reqMappings) == 0:
			g = newGap(req.ID, req.RequirementCode, req.FrameworkVersionID,
				types.GapNoControlMapped, unmappedSeverity(req), 0)
		default:
			coverage := scoring.AggregateCoverage(reqMappings)
			if coverage >= d.cfg.CoverageThreshold {
				continue
			}
			severity := types.SeverityMedium
			if coverage < d.cfg.HighSeverityCoverage {
				severity = types.SeverityHigh
			}
			g = newGap(req.ID, req.RequirementCode, req.FrameworkVersionID,
				types.GapInsufficientCoverage, severity, coverage)
		}

		if old, ok := prior[req.ID]; ok {
			g.ID = old.ID
			g.Status = old.Status
			g.Notes = old.Notes
			g.DirectEvidence = old.DirectEvidence
			g.IdentifiedAt = old.IdentifiedAt
			g.UpdatedAt = time.Now().UTC()
		}
		next = append(next, g)
	}

	sort.Slice(next, func(i, j int) bool {
		if next[i].FrameworkVersionID != next[j].FrameworkVersionID {
			return next[i].FrameworkVersionID < next[j].FrameworkVersionID
		}
		return next[i].RequirementCode < next[j].RequirementCode
	})

	if err := d.gaps.ReplaceForVersion(ctx, frameworkVersionID, next); err != nil {
		return nil, err
	}

	d.logger.Info("gap recalculation complete",
		logging.String("framework_version_id", frameworkVersionID),
		logging.Int("requirements", len(requirements)),
		logging.Int("gaps", len(next)))
	return next, nil
}

// technicalSafeguardPrefixes marks requirement code families that are
// technical safeguards regardless of their text.
var technicalSafeguardPrefixes = []string{"cc6", "sc-", "164.312", "a.10"}

// unmappedSeverity classifies an unmapped requirement by keyword
// heuristics. The heuristic is best effort and always falls through to
// low rather than erroring.
func unmappedSeverity(req *requirement.MasterRequirement) types.Severity {
	text := strings.ToLower(req.Title + " " + req.OfficialText)
	code := strings.ToLower(req.RequirementCode)

	for _, prefix := range technicalSafeguardPrefixes {
		if strings.HasPrefix(code, prefix) {
			return types.SeverityCritical
		}
	}
	switch {
	case containsAny(text, "encryption", "authentication", "cryptograph"):
		return types.SeverityCritical
	case containsAny(text, "access", "audit", "incident", "backup"):
		return types.SeverityHigh
	case containsAny(text, "policy", "procedure", "training"):
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
