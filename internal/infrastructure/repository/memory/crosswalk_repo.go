package memory

import (
	"context"
	"sort"

	"github.com/regtrace/regtrace/internal/domain/crosswalk"
)

type crosswalkRepo struct {
	store
	mappings map[string]*crosswalk.Mapping
}

// NewCrosswalkRepository creates an in-memory crosswalk mapping repository
func NewCrosswalkRepository() crosswalk.Repository {
	return &crosswalkRepo{mappings: make(map[string]*crosswalk.Mapping)}
}

func (r *crosswalkRepo) Create(_ context.Context, mapping *crosswalk.Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *mapping
	r.mappings[mapping.ID] = &clone
	return nil
}

func (r *crosswalkRepo) GetByID(_ context.Context, id string) (*crosswalk.Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mappings[id]
	if !ok {
		return nil, nil
	}
	clone := *m
	return &clone, nil
}

func (r *crosswalkRepo) Update(_ context.Context, mapping *crosswalk.Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *mapping
	r.mappings[mapping.ID] = &clone
	return nil
}

func (r *crosswalkRepo) UpdateAll(_ context.Context, mappings []*crosswalk.Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range mappings {
		clone := *m
		r.mappings[m.ID] = &clone
	}
	return nil
}

func (r *crosswalkRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mappings, id)
	return nil
}

func (r *crosswalkRepo) ListByVersion(_ context.Context, frameworkVersionID string) ([]*crosswalk.Mapping, error) {
	return r.filter(func(m *crosswalk.Mapping) bool {
		return m.FrameworkVersionID == frameworkVersionID
	}), nil
}

func (r *crosswalkRepo) ListByRequirement(_ context.Context, requirementID string) ([]*crosswalk.Mapping, error) {
	return r.filter(func(m *crosswalk.Mapping) bool {
		return m.RequirementID == requirementID
	}), nil
}

func (r *crosswalkRepo) ListByControl(_ context.Context, controlID string) ([]*crosswalk.Mapping, error) {
	return r.filter(func(m *crosswalk.Mapping) bool {
		return m.ControlID == controlID
	}), nil
}

func (r *crosswalkRepo) ListAll(_ context.Context) ([]*crosswalk.Mapping, error) {
	return r.filter(func(*crosswalk.Mapping) bool { return true }), nil
}

func (r *crosswalkRepo) filter(keep func(*crosswalk.Mapping) bool) []*crosswalk.Mapping {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*crosswalk.Mapping, 0)
	for _, m := range r.mappings {
		if keep(m) {
			clone := *m
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequirementCode != out[j].RequirementCode {
			return out[i].RequirementCode < out[j].RequirementCode
		}
		return out[i].ControlID < out[j].ControlID
	})
	return out
}
