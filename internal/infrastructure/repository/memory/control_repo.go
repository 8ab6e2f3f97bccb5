package memory

import (
	"context"
	"sort"

	"github.com/regtrace/regtrace/internal/domain/control"
)

// NewControlRepository creates an in-memory control repository. The
// engine only reads controls, so this store exposes a Seed method for
// loading fixtures instead of a write contract.
func NewControlRepository() *ControlRepository {
	return &ControlRepository{controls: make(map[string]*control.Control)}
}

// ControlRepository is the in-memory control store
type ControlRepository struct {
	store
	controls map[string]*control.Control
}

// Seed loads controls into the store, replacing entries with the same ID
func (r *ControlRepository) Seed(controls ...*control.Control) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range controls {
		clone := *c
		r.controls[c.ID] = &clone
	}
}

func (r *ControlRepository) GetByID(_ context.Context, id string) (*control.Control, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.controls[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (r *ControlRepository) List(_ context.Context) ([]*control.Control, error) {
	return r.filter(func(*control.Control) bool { return true }), nil
}

func (r *ControlRepository) ListByDomain(_ context.Context, domain string) ([]*control.Control, error) {
	return r.filter(func(c *control.Control) bool { return c.Domain == domain }), nil
}

func (r *ControlRepository) filter(keep func(*control.Control) bool) []*control.Control {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*control.Control, 0)
	for _, c := range r.controls {
		if keep(c) {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
