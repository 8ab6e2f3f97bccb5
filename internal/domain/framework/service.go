// Package framework provides the version lifecycle service. Activation
// maintains the single-active-version invariant; no requirement or
// mapping state is touched here.
package framework

import (
	"context"
	"time"

	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/pkg/errors"
	"github.com/regtrace/regtrace/pkg/types"
)

// Service defines the framework version lifecycle operations
type Service interface {
	// Activate sets the version active and supersedes the framework's
	// previously active version, if any
	Activate(ctx context.Context, versionID string) (*Version, error)

	// GetActive returns the single active version of a framework, or a
	// NotFound error when the framework has none
	GetActive(ctx context.Context, frameworkID string) (*Version, error)

	// GetLatest returns the version with the most recent effective date
	// regardless of status
	GetLatest(ctx context.Context, frameworkID string) (*Version, error)

	// Get retrieves one version by ID
	Get(ctx context.Context, versionID string) (*Version, error)

	// List retrieves all versions of a framework
	List(ctx context.Context, frameworkID string) ([]*Version, error)
}

type service struct {
	repo   Repository
	logger logging.Logger
}

// NewService creates the framework version lifecycle service
func NewService(repo Repository, logger logging.Logger) Service {
	return &service{repo: repo, logger: logger}
}

// Activate transitions the version to active. Any other version of the
// same framework currently active is set to superseded first, so a
// failure between the two writes can never leave two active versions.
func (s *service) Activate(ctx context.Context, versionID string) (*Version, error) {
	version, err := s.repo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, errors.NotFoundError("framework version")
	}
	if version.Status == types.VersionStatusActive {
		return version, nil
	}
	if !version.Activatable() {
		return nil, errors.NewFromCode(errors.ErrVersionNotActivatable).
			WithDetails("version_id", versionID).
			WithDetails("status", version.Status.String())
	}

	active, err := s.repo.ListByStatus(ctx, version.FrameworkID, types.VersionStatusActive)
	if err != nil {
		return nil, err
	}
	for _, prior := range active {
		if prior.ID == version.ID {
			continue
		}
		prior.Status = types.VersionStatusSuperseded
		prior.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, prior); err != nil {
			return nil, err
		}
		s.logger.Info("framework version superseded",
			logging.String("framework_id", prior.FrameworkID),
			logging.String("version_id", prior.ID),
			logging.String("version_code", prior.VersionCode))
	}

	version.Status = types.VersionStatusActive
	version.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, version); err != nil {
		return nil, err
	}

	s.logger.Info("framework version activated",
		logging.String("framework_id", version.FrameworkID),
		logging.String("version_id", version.ID),
		logging.String("version_code", version.VersionCode))

	return version, nil
}

// GetActive returns the framework's single active version
func (s *service) GetActive(ctx context.Context, frameworkID string) (*Version, error) {
	active, err := s.repo.ListByStatus(ctx, frameworkID, types.VersionStatusActive)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, errors.NewFromCode(errors.ErrNoActiveVersion).
			WithDetails("framework_id", frameworkID)
	}
	return active[0], nil
}

// GetLatest returns the version with the most recent effective date,
// regardless of status; used for "what's coming" views.
func (s *service) GetLatest(ctx context.Context, frameworkID string) (*Version, error) {
	versions, err := s.repo.ListByFramework(ctx, frameworkID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, errors.NotFoundError("framework version")
	}

	latest := versions[0]
	for _, v := range versions[1:] {
		if v.EffectiveDate.After(latest.EffectiveDate) {
			latest = v
		}
	}
	return latest, nil
}

// Get retrieves one version by ID
func (s *service) Get(ctx context.Context, versionID string) (*Version, error) {
	version, err := s.repo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, errors.NotFoundError("framework version")
	}
	return version, nil
}

// List retrieves all versions of a framework
func (s *service) List(ctx context.Context, frameworkID string) ([]*Version, error) {
	return s.repo.ListByFramework(ctx, frameworkID)
}
