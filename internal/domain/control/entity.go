// Package control defines the organization's internal control entity and
// the collaborator contracts the engine consumes for controls and their
// assessment answers. Controls are independent of any framework; only the
// crosswalk links them to requirements.
package control

import (
	"context"
	"time"

	"github.com/regtrace/regtrace/pkg/types"
)

// Control represents an internal, organization-defined implementation unit
type Control struct {
	// Unique identifier
	ID string `json:"id"`

	// Control title
	Title string `json:"title"`

	// Longer description of what the control does
	Description string `json:"description"`

	// Inherent risk tier
	RiskLevel types.RiskLevel `json:"risk_level"`

	// Keywords used by the auto-mapper
	Keywords []string `json:"keywords"`

	// Organizational domain (e.g. "Access Control", "Incident Response")
	Domain string `json:"domain"`

	// Owner user or team identifier
	Owner string `json:"owner,omitempty"`

	// Creation timestamp
	CreatedAt time.Time `json:"created_at"`

	// Last update timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

// Answer is the current assessment answer for a control, supplied by the
// questionnaire collaborator
type Answer struct {
	// Control this answer belongs to
	ControlID string `json:"control_id"`

	// Normalized answer value
	Value types.AnswerValue `json:"value"`

	// Evidence object keys attached to the answer
	Evidence []string `json:"evidence,omitempty"`

	// When the answer was last given
	AnsweredAt time.Time `json:"answered_at"`
}

// Implemented reports whether the answer counts the control as implemented
func (a Answer) Implemented() bool {
	return a.Value.Implemented()
}

// NotApplicable reports whether the control is excluded from scoring
func (a Answer) NotApplicable() bool {
	return a.Value == types.AnswerNotApplicable
}

// Repository defines the persistence contract for controls. The engine
// only reads controls; writes happen through the control-management
// collaborator.
type Repository interface {
	// GetByID retrieves a control by ID
	GetByID(ctx context.Context, id string) (*Control, error)

	// List retrieves all controls
	List(ctx context.Context) ([]*Control, error)

	// ListByDomain retrieves controls grouped under one domain
	ListByDomain(ctx context.Context, domain string) ([]*Control, error)
}

// AnswerLookup resolves the current answer for a control. A missing
// answer returns ok=false; the engine treats unanswered controls as
// unimplemented, never as errors.
type AnswerLookup interface {
	Answer(ctx context.Context, controlID string) (Answer, bool)
}

// AnswerMap is a static AnswerLookup backed by a map; the reference
// implementation used by tests and the CLI's offline mode.
type AnswerMap map[string]Answer

// Answer implements AnswerLookup
func (m AnswerMap) Answer(_ context.Context, controlID string) (Answer, bool) {
	a, ok := m[controlID]
	return a, ok
}
