package requirement

import "context"

// Repository defines the persistence contract for master requirements.
// The engine reads requirements; writes arrive through the catalog
// ingestion path only.
type Repository interface {
	// Create persists a new requirement
	Create(ctx context.Context, req *MasterRequirement) error

	// GetByID retrieves a requirement by ID
	GetByID(ctx context.Context, id string) (*MasterRequirement, error)

	// ListByVersion retrieves all requirements owned by a framework version
	ListByVersion(ctx context.Context, frameworkVersionID string) ([]*MasterRequirement, error)

	// GetByCode retrieves a requirement by code within a framework version
	GetByCode(ctx context.Context, frameworkVersionID, requirementCode string) (*MasterRequirement, error)

	// ListAll retrieves every requirement across all versions
	ListAll(ctx context.Context) ([]*MasterRequirement, error)
}
