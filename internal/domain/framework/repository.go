// Package framework provides the repository contract for framework
// versions. Concrete implementations live in the infrastructure layer.
package framework

import (
	"context"

	"github.com/regtrace/regtrace/pkg/types"
)

// Repository defines the persistence contract for framework versions
type Repository interface {
	// Create persists a new version
	Create(ctx context.Context, version *Version) error

	// GetByID retrieves a version by ID
	GetByID(ctx context.Context, id string) (*Version, error)

	// Update persists changes to an existing version
	Update(ctx context.Context, version *Version) error

	// ListByFramework retrieves all versions of one framework
	ListByFramework(ctx context.Context, frameworkID string) ([]*Version, error)

	// ListByStatus retrieves versions of one framework in a given status
	ListByStatus(ctx context.Context, frameworkID string, status types.VersionStatus) ([]*Version, error)

	// ListFrameworks retrieves the distinct framework identifiers present
	ListFrameworks(ctx context.Context) ([]string, error)
}
