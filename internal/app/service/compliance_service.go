// Package service wires the domain engines into application use cases:
// activation orchestration, dashboard assembly, gap lifecycle, and the
// mapping store. Services own cache invalidation, event publication and
// metrics; domain packages stay free of infrastructure.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/regtrace/regtrace/internal/app/dto"
	"github.com/regtrace/regtrace/internal/domain/control"
	"github.com/regtrace/regtrace/internal/domain/drift"
	"github.com/regtrace/regtrace/internal/domain/framework"
	"github.com/regtrace/regtrace/internal/domain/gap"
	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/internal/infrastructure/message"
	"github.com/regtrace/regtrace/internal/infrastructure/repository/redis"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/internal/observability/metrics"
	"github.com/regtrace/regtrace/pkg/errors"

	crosswalkdomain "github.com/regtrace/regtrace/internal/domain/crosswalk"
)

// ComplianceService orchestrates version transitions and drift lifecycle
type ComplianceService struct {
	versions     framework.Service
	requirements requirement.Repository
	mappings     crosswalkdomain.Repository
	controls     control.Repository
	answers      control.AnswerLookup
	engine       drift.Engine
	detector     *gap.Detector

	cache     redis.SnapshotCache
	publisher message.Publisher
	collector *metrics.Collector
	logger    logging.Logger
}

// NewComplianceService creates the activation and drift orchestrator
func NewComplianceService(
	versions framework.Service,
	requirements requirement.Repository,
	mappings crosswalkdomain.Repository,
	controls control.Repository,
	answers control.AnswerLookup,
	engine drift.Engine,
	detector *gap.Detector,
	cache redis.SnapshotCache,
	publisher message.Publisher,
	collector *metrics.Collector,
	logger logging.Logger,
) *ComplianceService {
	return &ComplianceService{
		versions:     versions,
		requirements: requirements,
		mappings:     mappings,
		controls:     controls,
		answers:      answers,
		engine:       engine,
		detector:     detector,
		cache:        cache,
		publisher:    publisher,
		collector:    collector,
		logger:       logger,
	}
}

// ActivateVersion activates a published version, then runs the drift
// scan against the previously active version and a full gap
// recalculation. The first activation of a framework has no predecessor
// and skips the drift scan.
func (s *ComplianceService) ActivateVersion(ctx context.Context, versionID, previousVersionID string) (*dto.ActivationResult, error) {
	target, err := s.versions.Get(ctx, versionID)
	if err != nil {
		return nil, err
	}

	// Resolve the transition predecessor before activation flips statuses
	if previousVersionID == "" {
		if active, err := s.versions.GetActive(ctx, target.FrameworkID); err == nil {
			previousVersionID = active.ID
		} else if !errors.IsType(err, errors.ErrorTypeNotFound) {
			return nil, err
		}
	}

	activated, err := s.versions.Activate(ctx, versionID)
	if err != nil {
		return nil, err
	}
	s.collector.VersionActivated()

	result := &dto.ActivationResult{
		VersionID:   activated.ID,
		FrameworkID: activated.FrameworkID,
		VersionCode: activated.VersionCode,
	}

	if previousVersionID != "" && previousVersionID != versionID {
		findings, err := s.DetectDrift(ctx, previousVersionID, versionID)
		if err != nil {
			return nil, err
		}
		result.DriftFindings = dto.NewDriftViews(findings, time.Now().UTC())
	}

	gaps, err := s.RecalculateGaps(ctx, versionID)
	if err != nil {
		return nil, err
	}
	result.GapsOpen = len(gaps)

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", logging.Error(err))
	}
	return result, nil
}

// DetectDrift runs the drift scan for one version transition and
// publishes one event per finding.
func (s *ComplianceService) DetectDrift(ctx context.Context, oldVersionID, newVersionID string) ([]*drift.ComplianceDrift, error) {
	started := time.Now()

	controls, err := s.controls.List(ctx)
	if err != nil {
		return nil, err
	}
	findings, err := s.engine.DetectDrift(ctx, oldVersionID, newVersionID, controls, s.answers)
	if err != nil {
		return nil, err
	}
	s.collector.ObservePass("drift_scan", time.Since(started))

	for _, f := range findings {
		s.collector.DriftDetected(string(f.DriftType), string(f.Severity))
		if err := s.publisher.PublishDrift(ctx, newEvent("drift.detected", f.ControlID, f)); err != nil {
			s.logger.Warn("drift event publish failed",
				logging.String("drift_id", f.ID), logging.Error(err))
		}
	}
	s.refreshOpenDriftGauge(ctx)
	return findings, nil
}

// RecalculateGaps runs a full gap pass over one version's requirements
// against the entire crosswalk.
func (s *ComplianceService) RecalculateGaps(ctx context.Context, frameworkVersionID string) ([]*gap.CustomGap, error) {
	started := time.Now()

	reqs, err := s.requirements.ListByVersion(ctx, frameworkVersionID)
	if err != nil {
		return nil, err
	}
	mappings, err := s.mappings.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	gaps, err := s.detector.Recalculate(ctx, frameworkVersionID, reqs, mappings)
	if err != nil {
		return nil, err
	}
	s.collector.ObservePass("gap_recalc", time.Since(started))

	open := 0
	for _, g := range gaps {
		s.collector.GapIdentified(string(g.GapType))
		if g.Status.Open() {
			open++
		}
	}
	s.collector.SetOpenGaps(open)

	if err := s.publisher.PublishGap(ctx, newEvent("gap.recalculated", frameworkVersionID, map[string]interface{}{
		"framework_version_id": frameworkVersionID,
		"gaps":                 len(gaps),
	})); err != nil {
		s.logger.Warn("gap event publish failed", logging.Error(err))
	}
	return gaps, nil
}

// AcknowledgeDrift moves a finding to acknowledged
func (s *ComplianceService) AcknowledgeDrift(ctx context.Context, id string) (*drift.ComplianceDrift, error) {
	return s.engine.Acknowledge(ctx, id)
}

// ResolveDrift closes a finding and publishes the resolution event
func (s *ComplianceService) ResolveDrift(ctx context.Context, id string, res drift.Resolution) (*drift.ComplianceDrift, error) {
	finding, err := s.engine.Resolve(ctx, id, res)
	if err != nil {
		return nil, err
	}
	s.collector.DriftResolved()
	s.refreshOpenDriftGauge(ctx)

	if err := s.publisher.PublishDrift(ctx, newEvent("drift.resolved", finding.ControlID, finding)); err != nil {
		s.logger.Warn("drift event publish failed",
			logging.String("drift_id", finding.ID), logging.Error(err))
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", logging.Error(err))
	}
	return finding, nil
}

// GetDrift retrieves one finding
func (s *ComplianceService) GetDrift(ctx context.Context, id string) (*drift.ComplianceDrift, error) {
	return s.engine.Get(ctx, id)
}

// ListOpenDrift retrieves open findings, most urgent first
func (s *ComplianceService) ListOpenDrift(ctx context.Context) ([]*drift.ComplianceDrift, error) {
	return s.engine.ListOpen(ctx)
}

func (s *ComplianceService) refreshOpenDriftGauge(ctx context.Context) {
	if open, err := s.engine.ListOpen(ctx); err == nil {
		s.collector.SetOpenDrift(len(open))
	}
}

func newEvent(eventType, key string, payload interface{}) message.Event {
	return message.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}
