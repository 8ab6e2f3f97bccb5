package service

import (
	"context"

	"github.com/regtrace/regtrace/internal/app/dto"
	"github.com/regtrace/regtrace/internal/infrastructure/repository/redis"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/pkg/types"

	crosswalkdomain "github.com/regtrace/regtrace/internal/domain/crosswalk"
)

// MappingService fronts the crosswalk store and keeps derived state
// (gaps, cached dashboards) in step with mapping changes
type MappingService struct {
	crosswalk  crosswalkdomain.Service
	compliance *ComplianceService
	cache      redis.SnapshotCache
	logger     logging.Logger
}

// NewMappingService creates the crosswalk application service
func NewMappingService(crosswalk crosswalkdomain.Service, compliance *ComplianceService,
	cache redis.SnapshotCache, logger logging.Logger) *MappingService {

	return &MappingService{crosswalk: crosswalk, compliance: compliance, cache: cache, logger: logger}
}

// CreateMapping persists a mapping and recalculates gaps for its version
func (s *MappingService) CreateMapping(ctx context.Context, req dto.CreateMappingRequest) (*crosswalkdomain.Mapping, error) {
	mapping, err := s.crosswalk.CreateMapping(ctx, crosswalkdomain.CreateMappingRequest{
		ControlID:          req.ControlID,
		RequirementID:      req.RequirementID,
		Strength:           types.MappingStrength(req.Strength),
		CoveragePercentage: req.CoveragePercentage,
		CoveredAspects:     req.CoveredAspects,
		UncoveredAspects:   req.UncoveredAspects,
		Justification:      req.Justification,
	})
	if err != nil {
		return nil, err
	}

	s.refresh(ctx, mapping.FrameworkVersionID)
	return mapping, nil
}

// RemoveMapping deletes a mapping and recalculates gaps for its version
func (s *MappingService) RemoveMapping(ctx context.Context, id string) error {
	mapping, err := s.crosswalk.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.crosswalk.RemoveMapping(ctx, id); err != nil {
		return err
	}

	s.refresh(ctx, mapping.FrameworkVersionID)
	return nil
}

// Get retrieves one mapping
func (s *MappingService) Get(ctx context.Context, id string) (*crosswalkdomain.Mapping, error) {
	return s.crosswalk.Get(ctx, id)
}

// ListForVersion retrieves the current mappings within a framework version
func (s *MappingService) ListForVersion(ctx context.Context, frameworkVersionID string) ([]*crosswalkdomain.Mapping, error) {
	return s.crosswalk.ListForVersion(ctx, frameworkVersionID)
}

// ListForRequirement retrieves the current mappings for one requirement
func (s *MappingService) ListForRequirement(ctx context.Context, requirementID string) ([]*crosswalkdomain.Mapping, error) {
	return s.crosswalk.ListForRequirement(ctx, requirementID)
}

// refresh recomputes gaps for the touched version and drops cached
// dashboards. Failures here are logged, not returned; the mapping write
// already committed.
func (s *MappingService) refresh(ctx context.Context, frameworkVersionID string) {
	if _, err := s.compliance.RecalculateGaps(ctx, frameworkVersionID); err != nil {
		s.logger.Warn("gap recalculation after mapping change failed",
			logging.String("framework_version_id", frameworkVersionID), logging.Error(err))
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", logging.Error(err))
	}
}
