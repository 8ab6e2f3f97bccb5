// Package crosswalk provides the mapping store service. Mapping drift
// status is owned by the drift engine; this service only exposes it to
// that engine, never to API callers.
package crosswalk

import (
	"context"
	"time"

	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/pkg/errors"
	"github.com/regtrace/regtrace/pkg/types"
)

// CreateMappingRequest carries the attributes of a new mapping
type CreateMappingRequest struct {
	ControlID          string
	RequirementID      string
	Strength           types.MappingStrength
	CoveragePercentage int
	CoveredAspects     []string
	UncoveredAspects   []string
	Justification      string
}

// Service defines the crosswalk store operations
type Service interface {
	// CreateMapping links a control to a requirement version. A prior
	// current mapping for the same (control, requirement) pair is
	// superseded, not deleted.
	CreateMapping(ctx context.Context, req CreateMappingRequest) (*Mapping, error)

	// RemoveMapping deletes a mapping by ID
	RemoveMapping(ctx context.Context, id string) error

	// Get retrieves a mapping by ID
	Get(ctx context.Context, id string) (*Mapping, error)

	// ListForVersion retrieves the current mappings within a framework version
	ListForVersion(ctx context.Context, frameworkVersionID string) ([]*Mapping, error)

	// ListForRequirement retrieves the current mappings for one requirement
	ListForRequirement(ctx context.Context, requirementID string) ([]*Mapping, error)

	// MarkDriftStatus flips a mapping's drift status. Reserved for the
	// drift engine.
	MarkDriftStatus(ctx context.Context, mappingID string, status types.DriftStatus) error
}

type service struct {
	repo    Repository
	library requirement.Library
	logger  logging.Logger
}

// NewService creates the crosswalk store service
func NewService(repo Repository, library requirement.Library, logger logging.Logger) Service {
	return &service{repo: repo, library: library, logger: logger}
}

// CreateMapping validates the target requirement, supersedes any prior
// current mapping for the pair, and persists the new mapping.
func (s *service) CreateMapping(ctx context.Context, req CreateMappingRequest) (*Mapping, error) {
	target, err := s.library.Get(ctx, req.RequirementID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errors.NotFoundError("requirement")
	}

	mapping, err := NewMapping(req.ControlID, req.RequirementID, target.RequirementCode,
		target.FrameworkVersionID, req.Strength, req.CoveragePercentage)
	if err != nil {
		return nil, err
	}
	mapping.CoveredAspects = req.CoveredAspects
	mapping.UncoveredAspects = req.UncoveredAspects
	mapping.Justification = req.Justification

	existing, err := s.repo.ListByRequirement(ctx, req.RequirementID)
	if err != nil {
		return nil, err
	}
	for _, prior := range existing {
		if prior.ControlID == req.ControlID && prior.Current() {
			prior.Supersede(target.FrameworkVersionID)
			if err := s.repo.Update(ctx, prior); err != nil {
				return nil, err
			}
		}
	}

	if err := s.repo.Create(ctx, mapping); err != nil {
		return nil, err
	}

	s.logger.Info("crosswalk mapping created",
		logging.String("mapping_id", mapping.ID),
		logging.String("control_id", mapping.ControlID),
		logging.String("requirement_code", mapping.RequirementCode),
		logging.Int("coverage", mapping.CoveragePercentage))

	return mapping, nil
}

// RemoveMapping deletes a mapping by ID
func (s *service) RemoveMapping(ctx context.Context, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.NotFoundError("crosswalk mapping")
	}
	return s.repo.Delete(ctx, id)
}

// Get retrieves a mapping by ID
func (s *service) Get(ctx context.Context, id string) (*Mapping, error) {
	mapping, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		return nil, errors.NotFoundError("crosswalk mapping")
	}
	return mapping, nil
}

// ListForVersion retrieves the current mappings within a framework version
func (s *service) ListForVersion(ctx context.Context, frameworkVersionID string) ([]*Mapping, error) {
	mappings, err := s.repo.ListByVersion(ctx, frameworkVersionID)
	if err != nil {
		return nil, err
	}
	return currentOnly(mappings), nil
}

// ListForRequirement retrieves the current mappings for one requirement
func (s *service) ListForRequirement(ctx context.Context, requirementID string) ([]*Mapping, error) {
	mappings, err := s.repo.ListByRequirement(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	return currentOnly(mappings), nil
}

// MarkDriftStatus flips a mapping's drift status
func (s *service) MarkDriftStatus(ctx context.Context, mappingID string, status types.DriftStatus) error {
	mapping, err := s.repo.GetByID(ctx, mappingID)
	if err != nil {
		return err
	}
	if mapping == nil {
		return errors.NotFoundError("crosswalk mapping")
	}
	mapping.DriftStatus = status
	mapping.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, mapping)
}

func currentOnly(mappings []*Mapping) []*Mapping {
	out := make([]*Mapping, 0, len(mappings))
	for _, m := range mappings {
		if m.Current() {
			out = append(out, m)
		}
	}
	return out
}
