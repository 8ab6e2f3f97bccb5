package crosswalk

import "context"

// Repository defines the persistence contract for crosswalk mappings
type Repository interface {
	// Create persists a new mapping
	Create(ctx context.Context, mapping *Mapping) error

	// GetByID retrieves a mapping by ID
	GetByID(ctx context.Context, id string) (*Mapping, error)

	// Update persists changes to an existing mapping
	Update(ctx context.Context, mapping *Mapping) error

	// UpdateAll persists a batch of mapping changes as one unit; either
	// every mapping lands or none do
	UpdateAll(ctx context.Context, mappings []*Mapping) error

	// Delete removes a mapping
	Delete(ctx context.Context, id string) error

	// ListByVersion retrieves all mappings within a framework version
	ListByVersion(ctx context.Context, frameworkVersionID string) ([]*Mapping, error)

	// ListByRequirement retrieves mappings targeting one requirement
	ListByRequirement(ctx context.Context, requirementID string) ([]*Mapping, error)

	// ListByControl retrieves mappings from one control
	ListByControl(ctx context.Context, controlID string) ([]*Mapping, error)

	// ListAll retrieves every mapping
	ListAll(ctx context.Context) ([]*Mapping, error)
}
