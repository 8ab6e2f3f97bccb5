package gap

import "context"

// Repository defines the persistence contract for custom gaps. The
// detector replaces one framework version's records atomically; readers
// never see a partially recalculated set, and other versions' records
// survive the swap.
type Repository interface {
	// GetByID retrieves a gap by ID
	GetByID(ctx context.Context, id string) (*CustomGap, error)

	// ListAll retrieves every gap
	ListAll(ctx context.Context) ([]*CustomGap, error)

	// ListOpen retrieves gaps whose status is not resolved or accepted
	ListOpen(ctx context.Context) ([]*CustomGap, error)

	// Update persists a status or notes change on one gap
	Update(ctx context.Context, gap *CustomGap) error

	// ReplaceForVersion atomically swaps one framework version's gap
	// records, leaving every other version's records untouched
	ReplaceForVersion(ctx context.Context, frameworkVersionID string, gaps []*CustomGap) error
}
