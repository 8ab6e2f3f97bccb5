package drift

import (
	"context"
	"sort"
	"time"

	"github.com/regtrace/regtrace/internal/domain/control"
	"github.com/regtrace/regtrace/internal/domain/crosswalk"
	"github.com/regtrace/regtrace/internal/domain/framework"
	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/pkg/errors"
	"github.com/regtrace/regtrace/pkg/types"
)

// EngineConfig holds the drift engine's tunables
type EngineConfig struct {
	// TransitionGraceDays is the fallback compliance window when a new
	// version carries no transition deadline
	TransitionGraceDays int
}

// Resolution carries the caller's resolution of one drift finding
type Resolution struct {
	Type       string
	Notes      string
	ResolvedBy string
}

// Engine defines the drift detection and resolution operations
type Engine interface {
	// DetectDrift scans a version transition against the crosswalk and
	// recorded answers, emitting one finding per affected (control,
	// requirement) pair. Re-running the same scan updates still-detected
	// findings in place instead of duplicating them. Findings and mapping
	// status changes are committed as one batch after the scan completes,
	// so a failed scan persists nothing.
	DetectDrift(ctx context.Context, oldVersionID, newVersionID string,
		controls []*control.Control, answers control.AnswerLookup) ([]*ComplianceDrift, error)

	// Acknowledge moves a detected finding to acknowledged
	Acknowledge(ctx context.Context, id string) (*ComplianceDrift, error)

	// Resolve closes a finding and, when it has an associated mapping,
	// resets that mapping's drift status to current
	Resolve(ctx context.Context, id string, res Resolution) (*ComplianceDrift, error)

	// Get retrieves a finding by ID
	Get(ctx context.Context, id string) (*ComplianceDrift, error)

	// ListOpen retrieves open findings sorted by ascending days remaining
	ListOpen(ctx context.Context) ([]*ComplianceDrift, error)
}

type engine struct {
	drifts   Repository
	mappings crosswalk.Repository
	library  requirement.Library
	versions framework.Repository
	matcher  *crosswalk.Matcher
	cfg      EngineConfig
	logger   logging.Logger
}

// NewEngine creates the drift detection engine
func NewEngine(drifts Repository, mappings crosswalk.Repository, library requirement.Library,
	versions framework.Repository, matcher *crosswalk.Matcher, cfg EngineConfig, logger logging.Logger) Engine {

	if cfg.TransitionGraceDays <= 0 {
		cfg.TransitionGraceDays = 180
	}
	return &engine{
		drifts:   drifts,
		mappings: mappings,
		library:  library,
		versions: versions,
		matcher:  matcher,
		cfg:      cfg,
		logger:   logger,
	}
}

func (e *engine) DetectDrift(ctx context.Context, oldVersionID, newVersionID string,
	controls []*control.Control, answers control.AnswerLookup) ([]*ComplianceDrift, error) {

	newVersion, err := e.versions.GetByID(ctx, newVersionID)
	if err != nil {
		return nil, err
	}
	if newVersion == nil {
		return nil, errors.NotFoundError("framework version")
	}
	deadline := newVersion.ComplianceDeadline(e.cfg.TransitionGraceDays)

	oldReqs, err := e.library.RequirementsForVersion(ctx, oldVersionID)
	if err != nil {
		return nil, err
	}
	newReqs, err := e.library.RequirementsForVersion(ctx, newVersionID)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(newReqs))
	for code := range newReqs {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	findings := make([]*ComplianceDrift, 0)
	statusChanges := make([]*crosswalk.Mapping, 0)
	for _, code := range codes {
		newReq := newReqs[code]
		if oldReq, ok := oldReqs[code]; ok {
			matched, changed, err := e.scanMatchedRequirement(ctx, oldReq, newReq, oldVersionID, newVersionID, deadline, answers)
			if err != nil {
				return nil, err
			}
			findings = append(findings, matched...)
			statusChanges = append(statusChanges, changed...)
			continue
		}
		fresh, err := e.scanNewRequirement(ctx, newReq, oldVersionID, newVersionID, deadline, controls, answers)
		if err != nil {
			return nil, err
		}
		findings = append(findings, fresh...)
	}

	// Nothing is persisted until the whole scan has succeeded; a failure
	// here leaves findings and mapping statuses exactly as they were.
	if err := e.drifts.SaveScan(ctx, findings); err != nil {
		return nil, err
	}
	if err := e.mappings.UpdateAll(ctx, statusChanges); err != nil {
		return nil, err
	}

	e.logger.Info("drift scan complete",
		logging.String("old_version_id", oldVersionID),
		logging.String("new_version_id", newVersionID),
		logging.Int("findings", len(findings)))
	return findings, nil
}

// scanMatchedRequirement analyzes every current mapping against an
// old/new requirement pair sharing the same code. It only reads; the
// returned findings and mapping status changes are committed by the
// caller once the full scan has succeeded.
func (e *engine) scanMatchedRequirement(ctx context.Context, oldReq, newReq *requirement.MasterRequirement,
	oldVersionID, newVersionID string, deadline time.Time, answers control.AnswerLookup) ([]*ComplianceDrift, []*crosswalk.Mapping, error) {

	mappings, err := e.mappings.ListByRequirement(ctx, oldReq.ID)
	if err != nil {
		return nil, nil, err
	}

	findings := make([]*ComplianceDrift, 0)
	statusChanges := make([]*crosswalk.Mapping, 0)
	for _, m := range mappings {
		if !m.Current() {
			continue
		}

		var value types.AnswerValue
		answer, answered := answers.Answer(ctx, m.ControlID)
		if answered {
			value = answer.Value
		}

		analysis := AnalyzeChange(oldReq, newReq, value, answered)
		if !analysis.HasDrift {
			continue
		}

		finding, err := e.buildFinding(ctx, m.ControlID, m.ID, newReq, oldVersionID, newVersionID, deadline,
			analysis.DriftType, analysis.Severity, value, analysis.AnswerStillValid, analysis.ValidityReason,
			mappedResolutionPath())
		if err != nil {
			return nil, nil, err
		}
		findings = append(findings, finding)

		status := types.DriftStatusAtRisk
		if !analysis.AnswerStillValid {
			status = types.DriftStatusDrifted
		}
		if m.DriftStatus != status {
			changed := *m
			changed.DriftStatus = status
			changed.UpdatedAt = time.Now().UTC()
			statusChanges = append(statusChanges, &changed)
		}
	}
	return findings, statusChanges, nil
}

// scanNewRequirement proposes controls for a requirement with no prior
// counterpart and records a new_requirement finding for each candidate.
func (e *engine) scanNewRequirement(ctx context.Context, newReq *requirement.MasterRequirement,
	oldVersionID, newVersionID string, deadline time.Time,
	controls []*control.Control, answers control.AnswerLookup) ([]*ComplianceDrift, error) {

	severity := NewRequirementSeverity(newReq)
	findings := make([]*ComplianceDrift, 0)
	for _, candidate := range e.matcher.Match(newReq, controls) {
		var value types.AnswerValue
		if answer, answered := answers.Answer(ctx, candidate.Control.ID); answered {
			value = answer.Value
		}

		finding, err := e.buildFinding(ctx, candidate.Control.ID, "", newReq, oldVersionID, newVersionID, deadline,
			types.DriftNewRequirement, severity, value, false,
			"new requirement has no validated mapping and needs review",
			newRequirementResolutionPath())
		if err != nil {
			return nil, err
		}
		findings = append(findings, finding)
	}
	return findings, nil
}

// buildFinding constructs the record a scan will persist for one
// (control, requirement, version-pair) key, reusing the still-detected
// finding's identity when one exists so repeat scans refresh instead of
// duplicate. Acknowledged and resolved findings are never touched. The
// record is not persisted here.
func (e *engine) buildFinding(ctx context.Context, controlID, mappingID string, newReq *requirement.MasterRequirement,
	oldVersionID, newVersionID string, deadline time.Time, driftType types.DriftType, severity types.Severity,
	previousAnswer types.AnswerValue, answerStillValid bool, validityReason string,
	resolutionPath []ResolutionOption) (*ComplianceDrift, error) {

	existing, err := e.drifts.FindDetected(ctx, controlID, newReq.ID, oldVersionID, newVersionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		refreshed := *existing
		refreshed.MappingID = mappingID
		refreshed.DriftType = driftType
		refreshed.Severity = severity
		refreshed.PreviousAnswer = previousAnswer
		refreshed.AnswerStillValid = answerStillValid
		refreshed.ValidityReason = validityReason
		refreshed.ComplianceDeadline = deadline
		refreshed.ResolutionPath = resolutionPath
		refreshed.UpdatedAt = time.Now().UTC()
		return &refreshed, nil
	}

	finding := newDrift(controlID, mappingID, newReq.ID, newReq.RequirementCode,
		oldVersionID, newVersionID, deadline)
	finding.DriftType = driftType
	finding.Severity = severity
	finding.PreviousAnswer = previousAnswer
	finding.AnswerStillValid = answerStillValid
	finding.ValidityReason = validityReason
	finding.ResolutionPath = resolutionPath
	return finding, nil
}

func (e *engine) Acknowledge(ctx context.Context, id string) (*ComplianceDrift, error) {
	finding, err := e.drifts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if finding == nil {
		return nil, errors.NotFoundError("drift record")
	}
	if finding.Status == types.DriftRecordResolved {
		return nil, errors.NewFromCode(errors.ErrDriftAlreadyResolved)
	}

	finding.Status = types.DriftRecordAcknowledged
	finding.UpdatedAt = time.Now().UTC()
	if err := e.drifts.Update(ctx, finding); err != nil {
		return nil, err
	}
	return finding, nil
}

func (e *engine) Resolve(ctx context.Context, id string, res Resolution) (*ComplianceDrift, error) {
	finding, err := e.drifts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if finding == nil {
		return nil, errors.NotFoundError("drift record")
	}
	if finding.Status == types.DriftRecordResolved {
		return nil, errors.NewFromCode(errors.ErrDriftAlreadyResolved)
	}

	now := time.Now().UTC()
	finding.Status = types.DriftRecordResolved
	finding.ResolvedAt = &now
	finding.ResolvedBy = res.ResolvedBy
	finding.ResolutionType = res.Type
	finding.ResolutionNotes = res.Notes
	finding.UpdatedAt = now
	if err := e.drifts.Update(ctx, finding); err != nil {
		return nil, err
	}

	if finding.MappingID != "" {
		mapping, err := e.mappings.GetByID(ctx, finding.MappingID)
		if err != nil {
			return nil, err
		}
		if mapping != nil && mapping.DriftStatus != types.DriftStatusCurrent {
			mapping.DriftStatus = types.DriftStatusCurrent
			mapping.UpdatedAt = now
			if err := e.mappings.Update(ctx, mapping); err != nil {
				return nil, err
			}
		}
	}

	e.logger.Info("drift resolved",
		logging.String("drift_id", finding.ID),
		logging.String("resolution_type", res.Type),
		logging.String("resolved_by", res.ResolvedBy))
	return finding, nil
}

func (e *engine) Get(ctx context.Context, id string) (*ComplianceDrift, error) {
	finding, err := e.drifts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if finding == nil {
		return nil, errors.NotFoundError("drift record")
	}
	return finding, nil
}

func (e *engine) ListOpen(ctx context.Context) ([]*ComplianceDrift, error) {
	open, err := e.drifts.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sort.Slice(open, func(i, j int) bool {
		di, dj := open[i].DaysRemaining(now), open[j].DaysRemaining(now)
		if di != dj {
			return di < dj
		}
		return open[i].ID < open[j].ID
	})
	return open, nil
}

// NewRequirementSeverity derives a new-requirement finding's severity
// from the requirement's own attributes.
func NewRequirementSeverity(req *requirement.MasterRequirement) types.Severity {
	switch {
	case req.ImplementationLevel == types.ImplementationMandatory && req.RiskWeight >= 8:
		return types.SeverityCritical
	case req.ImplementationLevel == types.ImplementationMandatory:
		return types.SeverityHigh
	case req.EmergingTechCategory != "":
		return types.SeverityHigh
	case req.RiskWeight >= 7:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

func mappedResolutionPath() []ResolutionOption {
	return []ResolutionOption{
		{Type: "update_control", Description: "Update the mapped control to satisfy the revised requirement"},
		{Type: "reassess_answer", Description: "Re-answer the control against the new requirement text"},
		{Type: "accept_risk", Description: "Formally accept the drift with sign-off"},
	}
}

func newRequirementResolutionPath() []ResolutionOption {
	return []ResolutionOption{
		{Type: "update_existing_control", Description: "Extend the matched control to cover the new requirement"},
		{Type: "create_new_control", Description: "Create a dedicated control for the new requirement"},
	}
}
