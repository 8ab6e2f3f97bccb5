package drift

import "context"

// Repository defines the persistence contract for drift findings
type Repository interface {
	// Create persists a new finding
	Create(ctx context.Context, drift *ComplianceDrift) error

	// GetByID retrieves a finding by ID
	GetByID(ctx context.Context, id string) (*ComplianceDrift, error)

	// Update persists changes to an existing finding
	Update(ctx context.Context, drift *ComplianceDrift) error

	// SaveScan persists one scan's findings as a single batch, creating
	// new records and refreshing existing ones by ID. Either every
	// finding lands or none do.
	SaveScan(ctx context.Context, findings []*ComplianceDrift) error

	// FindDetected retrieves the still-detected finding for one
	// (control, requirement, version-pair) key, or nil
	FindDetected(ctx context.Context, controlID, requirementID, oldVersionID, newVersionID string) (*ComplianceDrift, error)

	// ListOpen retrieves findings whose status still needs action
	ListOpen(ctx context.Context) ([]*ComplianceDrift, error)

	// ListAll retrieves every finding
	ListAll(ctx context.Context) ([]*ComplianceDrift, error)
}
